package httpserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
)

// Argon2Params defines parameters for Argon2id password hashing
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultArgon2Params are used for ADMIN_PASSWORD_HASH values.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// HashPassword creates an Argon2id hash of the password in the form
// argon2id$iterations$memory$parallelism$salt$hash (raw std base64).
func HashPassword(password string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("op=auth.HashPassword: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen)
	return fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		params.Iterations,
		params.Memory,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword verifies a password against its Argon2id hash
func VerifyPassword(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false
	}
	iters, err1 := parseUint32(parts[1])
	mem, err2 := parseUint32(parts[2])
	par, err3 := parseUint32(parts[3])
	if err1 != nil || err2 != nil || err3 != nil || par == 0 || par > math.MaxUint8 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}
	actual := argon2.IDKey([]byte(password), salt, iters, mem, uint8(par), uint32(len(expected))) //nolint:gosec // len bounded by decoded hash
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// AdminGuard requires HTTP Basic Auth with the configured admin credentials.
// It is a pass-through when admin credentials are not configured.
func AdminGuard(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.AdminEnabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !checkAdmin(cfg, user, pass) {
				LoggerFrom(r).Warn("admin authentication failed", "user_present", user != "")
				w.Header().Set("WWW-Authenticate", `Basic realm="ats-admin", charset="UTF-8"`)
				writeError(w, r, errUnauthorized, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAdmin(cfg config.Config, user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.AdminUsername)) == 1
	var passOK bool
	if cfg.AdminPasswordHash != "" {
		passOK = VerifyPassword(pass, cfg.AdminPasswordHash)
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.AdminPassword)) == 1
	}
	return userOK && passOK
}

// parseUint32 parses a decimal string into uint32; returns error on failure
func parseUint32(s string) (uint32, error) {
	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return uint32(x), nil
}
