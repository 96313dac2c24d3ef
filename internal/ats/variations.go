package ats

import "strings"

// aliasTable maps a lower-cased keyword to common surface forms recruiters and
// candidates use for the same technology. It is read-only after init.
var aliasTable = map[string][]string{
	"javascript":                  {"js", "ecmascript", "java script"},
	"typescript":                  {"ts"},
	"nodejs":                      {"node.js", "node js", "node"},
	"node.js":                     {"nodejs", "node js", "node"},
	"react":                       {"reactjs", "react.js"},
	"vue.js":                      {"vue", "vuejs"},
	"angular":                     {"angularjs", "angular.js"},
	"express":                     {"expressjs", "express.js"},
	"mongodb":                     {"mongo"},
	"postgresql":                  {"postgres", "psql"},
	"kubernetes":                  {"k8s"},
	"machine learning":            {"ml"},
	"artificial intelligence":     {"ai"},
	"natural language processing": {"nlp"},
	"large language models":       {"llm", "llms"},
	"rest api":                    {"restful api", "rest apis", "restful"},
	"continuous integration":      {"ci", "ci/cd"},
	"user interface":              {"ui"},
	"user experience":             {"ux"},
	"human resources":             {"hr"},
	"search engine optimization":  {"seo"},
	"electronic health records":   {"ehr", "emr"},
	"amazon web services":         {"aws"},
	"aws":                         {"amazon web services"},
	"scikit-learn":                {"sklearn", "scikit learn"},
	"tensorflow":                  {"tf"},
	"object oriented programming": {"oop"},
	"oop":                         {"object oriented", "object-oriented"},
}

var separatorVariants = []string{".", "_", "-"}

// VariationsOf returns the lower-cased equivalence set for keyword: the keyword
// itself, any known aliases and, for multi-word keywords, the forms joined by
// nothing, ".", "_" and "-". Order is deterministic and entries are unique.
func VariationsOf(keyword string) []string {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, 8)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(kw)
	for _, alias := range aliasTable[kw] {
		add(alias)
	}
	if parts := strings.Fields(kw); len(parts) > 1 {
		add(strings.Join(parts, ""))
		for _, sep := range separatorVariants {
			add(strings.Join(parts, sep))
		}
	}
	return out
}
