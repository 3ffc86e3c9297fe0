package assets

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/antiquestore/antique-store-backend/pkg/enums"
)

// classPolicy is the storage rule set for one asset class.
type classPolicy struct {
	folder  string
	formats []string
	preset  string
}

var policies = map[enums.AssetClass]classPolicy{
	enums.AssetClassProduct: {
		folder:  "products",
		formats: []string{"jpg", "jpeg", "png", "webp"},
		preset:  "c_limit,w_1200,h_1200,q_auto",
	},
	enums.AssetClassAvatar: {
		folder:  "avatars",
		formats: []string{"jpg", "jpeg", "png"},
		preset:  "c_fill,g_face,w_300,h_300,q_auto",
	},
	enums.AssetClassInvoice: {
		folder:  "invoices",
		formats: []string{"pdf"},
	},
}

func policyFor(class enums.AssetClass) (classPolicy, bool) {
	p, ok := policies[class]
	return p, ok
}

func (p classPolicy) allows(format string) bool {
	for _, candidate := range p.formats {
		if strings.EqualFold(candidate, format) {
			return true
		}
	}
	return false
}

func (p classPolicy) describeFormats() string {
	return humanReadableList(p.formats)
}

// classForPublicID resolves the class from the folder prefix of a stored
// object name. Only names inside a managed folder are accepted.
func classForPublicID(publicID string) (enums.AssetClass, error) {
	clean := strings.TrimSpace(publicID)
	if clean == "" {
		return "", fmt.Errorf("public_id is required")
	}
	if strings.HasPrefix(clean, "/") || strings.Contains(clean, "..") || strings.Contains(clean, `\`) {
		return "", fmt.Errorf("public_id %q is not a valid object name", publicID)
	}
	folder, rest, ok := strings.Cut(clean, "/")
	if !ok || strings.TrimSpace(rest) == "" {
		return "", fmt.Errorf("public_id %q must include a folder and a name", publicID)
	}
	for class, p := range policies {
		if p.folder == folder {
			return class, nil
		}
	}
	return "", fmt.Errorf("public_id %q is outside the managed folders", publicID)
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}

// sanitizeBaseName keeps the readable part of an uploaded filename for use
// inside an object name. The extension is dropped; the sniffed format wins.
func sanitizeBaseName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	clean = strings.TrimSuffix(clean, path.Ext(clean))

	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range strings.ToLower(clean) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '.':
			b.WriteRune('-')
		}
	}
	result := strings.Trim(b.String(), "-_")
	if len(result) > 60 {
		result = strings.Trim(result[:60], "-_")
	}
	return result
}
