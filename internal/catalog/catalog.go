// Package catalog holds the built-in role keyword catalog and reads catalog
// files in YAML form.
package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

// DefaultKeywords are the generic professional skills used when a role has no
// entry anywhere.
var DefaultKeywords = []string{
	"Communication", "Project Management", "Problem Solving", "Team Collaboration",
	"Leadership", "Strategic Planning", "Budget Management", "Time Management",
	"Analytical Skills", "Presentation Skills", "Organization", "Teamwork",
	"Critical Thinking", "Decision Making", "Negotiation", "Interpersonal Skills",
	"Research", "Writing", "Public Speaking", "Customer Service",
}

var builtin = map[string][]string{
	"HR": {
		"Recruitment", "Employee Relations", "Onboarding", "HR Policies", "Talent Acquisition",
		"Benefits", "Compliance", "HRIS", "Employee Engagement", "Performance Reviews",
		"HR", "Human Resources", "Hiring", "Personnel", "Staffing",
		"Training", "Compensation", "Benefits", "Payroll", "Labor Relations",
	},
	"UI/UX Designer": {
		"User Research", "Wireframing", "Prototyping", "Figma", "User Testing",
		"Adobe XD", "Design Systems", "Accessibility", "UX Writing", "Interaction Design",
		"UI", "UX", "User Interface", "User Experience", "Sketch",
		"InVision", "Usability", "Information Architecture", "Visual Design", "Responsive Design",
	},
	"Java Developer": {
		"Java", "Spring", "Hibernate", "SQL", "REST API",
		"Microservices", "Docker", "Kubernetes", "JUnit", "Maven",
		"J2EE", "Spring Boot", "JPA", "Servlets", "JSP",
		"JDBC", "Web Services", "Jenkins", "Git", "Agile",
	},
	"Python Developer": {
		"Python", "Django", "Flask", "SQL", "API",
		"Machine Learning", "Docker", "AWS", "Data Analysis", "Pandas",
		"NumPy", "PyTorch", "TensorFlow", "Scikit-learn", "REST",
		"FastAPI", "Pytest", "Git", "Linux", "OOP",
	},
	"Full Stack Developer": {
		"JavaScript", "React", "Node.js", "CSS", "HTML",
		"TypeScript", "Redux", "GraphQL", "MongoDB", "Express",
		"Angular", "Vue.js", "REST API", "Frontend", "Backend",
		"Full Stack", "Web Development", "Database", "Git", "Agile",
	},
	"Mechanical Engineering": {
		"CAD", "SolidWorks", "Product Design", "Manufacturing", "CFD",
		"Thermal Analysis", "Six Sigma", "GD&T", "FEA", "Materials Science",
		"AutoCAD", "ANSYS", "Mechanical Design", "3D Modeling", "Prototyping",
		"CNC", "Quality Control", "Project Management", "Engineering", "Technical Drawing",
	},
	"SEO": {
		"Keyword Research", "On-page SEO", "Content Strategy", "Google Analytics", "Schema Markup",
		"Local SEO", "Mobile SEO", "Link Building", "SEO Audits", "Search Console",
		"SEM", "Digital Marketing", "Backlinks", "SERP", "Ahrefs",
		"SEMrush", "Moz", "Technical SEO", "Content Marketing", "Conversion Rate Optimization",
	},
	"Medical": {
		"Patient Care", "Medical Records", "Clinical Procedures", "Healthcare", "Electronic Health Records",
		"Quality Improvement", "Care Coordination", "Medical Terminology", "Patient Assessment", "Treatment Planning",
		"Diagnosis", "Medication", "Nursing", "Physician", "Hospital",
		"Clinic", "Therapy", "Health", "Medical", "Patient",
	},
	"PROMPT Engineering": {
		"Natural Language Processing", "Machine Learning", "AI Models", "GPT", "Prompt Design",
		"Context Engineering", "Fine-tuning", "Data Annotation", "Conversational AI", "Semantic Analysis",
		"NLP", "LLM", "Artificial Intelligence", "Neural Networks", "Transformer Models",
		"BERT", "OpenAI", "Prompt Optimization", "AI Ethics", "Language Models",
	},
}

// Lookup returns a copy of the built-in keywords for role. Role names are
// matched exactly.
func Lookup(role string) ([]string, bool) {
	kws, ok := builtin[role]
	if !ok {
		return nil, false
	}
	return append([]string(nil), kws...), true
}

// Roles returns the built-in role names sorted alphabetically.
func Roles() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Builtin returns the built-in catalog as roles sorted by name.
func Builtin() []domain.Role {
	names := Roles()
	out := make([]domain.Role, 0, len(names))
	for _, name := range names {
		kws, _ := Lookup(name)
		out = append(out, domain.Role{Name: name, Keywords: kws})
	}
	return out
}

type fileRole struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type file struct {
	Roles []fileRole `yaml:"roles"`
}

// LoadYAML reads a catalog document of the form
//
//	roles:
//	  - name: Java Developer
//	    keywords: [Java, Spring]
func LoadYAML(r io.Reader) ([]domain.Role, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("op=catalog.LoadYAML: %w", err)
	}
	out := make([]domain.Role, 0, len(f.Roles))
	seen := map[string]bool{}
	for i, fr := range f.Roles {
		name := strings.TrimSpace(fr.Name)
		if name == "" {
			return nil, fmt.Errorf("op=catalog.LoadYAML: %w: role %d has no name", domain.ErrInvalidArgument, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("op=catalog.LoadYAML: %w: duplicate role %q", domain.ErrInvalidArgument, name)
		}
		seen[name] = true
		out = append(out, domain.Role{Name: name, Keywords: domain.CleanKeywords(fr.Keywords)})
	}
	return out, nil
}
