package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

// Request bodies.

type analyzeTextRequest struct {
	Text    string `json:"text" validate:"max=200000"`
	JobRole string `json:"jobRole" validate:"required,max=100"`
}

type createRoleRequest struct {
	Role     string   `json:"role" validate:"required,max=100"`
	Keywords []string `json:"keywords" validate:"required,min=1,max=200,dive,max=100"`
}

type updateKeywordsRequest struct {
	Keywords []string `json:"keywords" validate:"required,min=1,max=200,dive,max=100"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names.
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// decodeJSON reads a size-capped JSON body into dst and validates it. Field
// failures are returned as a details map of json field to failed tag.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", errPayloadTooLarge, mbe.Limit)
		}
		return nil, fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidArgument, err)
	}
	if err := getValidator().Struct(dst); err != nil {
		verrs := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				verrs[fe.Field()] = fe.Tag()
			}
		}
		return verrs, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument)
	}
	return nil, nil
}
