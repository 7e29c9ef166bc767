// ABOUTME: TOML keys-file loading for the license gate
// ABOUTME: Merges file-based keys with inline configured keys

package license

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// keysFile is the TOML shape of a license keys file:
//
//	keys = [
//	  "COSMO-1234",
//	  "COSMO-5678",
//	]
type keysFile struct {
	Keys []string `toml:"keys"`
}

// LoadKeysFile reads license keys from a TOML file, expanding ${VAR}
// environment references in the raw content.
func LoadKeysFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keys file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var kf keysFile
	if _, err := toml.Decode(expanded, &kf); err != nil {
		return nil, fmt.Errorf("parsing keys file: %w", err)
	}

	return kf.Keys, nil
}

// MergeKeys combines inline and file-based key lists, dropping empties
// and duplicates while preserving first-seen order.
func MergeKeys(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, k := range list {
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, k)
		}
	}
	return merged
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}
