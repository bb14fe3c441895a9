package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/leadforge-cli/internal/model"
)

var (
	trailingFraction = regexp.MustCompile(`\.\d*\s*$`)
	nonDigits        = regexp.MustCompile(`[^0-9]`)
	rangeSeparator   = regexp.MustCompile(`\s*(?:-|–|—|\bto\b)\s*`)
)

// ParseAmount converts a budget bound to whole units. Numbers are truncated;
// strings lose a trailing decimal fraction, then every non-digit character,
// and are parsed as an integer. Anything unparsable is 0. The second return
// reports a negative numeric input, which callers reject.
func ParseAmount(v any) (int64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), n < 0
	case float32:
		return int64(n), n < 0
	case int:
		return int64(n), n < 0
	case int64:
		return n, n < 0
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, i < 0
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), f < 0
		}
		return 0, false
	case string:
		return parseAmountString(n), false
	default:
		return 0, false
	}
}

func parseAmountString(s string) int64 {
	s = trailingFraction.ReplaceAllString(strings.TrimSpace(s), "")
	digits := nonDigits.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseBudget reads a budget from an object with min/max, or a range string
// such as "$5,000 - $10,000". The result is swapped when inverted.
func parseBudget(v any) (*model.Budget, string) {
	switch b := v.(type) {
	case nil:
		return nil, ""
	case map[string]any:
		idx := indexKeys(b)
		minRaw, hasMin := idx.lookup("min", "minimum", "low", "from")
		maxRaw, hasMax := idx.lookup("max", "maximum", "high", "to")
		if !hasMin && !hasMax {
			return nil, ""
		}
		lo, negLo := ParseAmount(minRaw)
		hi, negHi := ParseAmount(maxRaw)
		if negLo || negHi {
			return nil, "negative budget discarded"
		}
		if !hasMax {
			hi = lo
		}
		if !hasMin {
			lo = hi
		}
		return finishBudget(lo, hi)
	case string:
		parts := rangeSeparator.Split(strings.TrimSpace(b), 2)
		lo := parseAmountString(parts[0])
		hi := lo
		if len(parts) == 2 {
			hi = parseAmountString(parts[1])
		}
		return finishBudget(lo, hi)
	default:
		n, neg := ParseAmount(b)
		if neg {
			return nil, "negative budget discarded"
		}
		return finishBudget(n, n)
	}
}

func finishBudget(lo, hi int64) (*model.Budget, string) {
	var warn string
	if lo > hi {
		warn = "inverted budget range swapped"
	}
	nb := model.Budget{Min: lo, Max: hi}.Normalized()
	return &nb, warn
}
