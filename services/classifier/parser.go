package classifier

import (
	"strings"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
)

const missingReason = "no reason provided"

// ParseClassification reads the CATEGORY/DEPARTMENT/PRIORITY/REASON lines of a
// model answer. Anything missing or outside the taxonomy keeps its default.
func ParseClassification(answer string) dto.Classification {
	result := dto.DefaultClassification("")
	seen := map[string]bool{}

	for _, line := range strings.Split(answer, "\n") {
		key, value, ok := splitAnswerLine(line)
		if !ok || seen[key] {
			continue
		}

		switch key {
		case "CATEGORY":
			if c, ok := enum.ParseEmailCategory(value); ok {
				result.Category = c
				seen[key] = true
			}
		case "DEPARTMENT":
			if d, ok := enum.ParseDepartment(value); ok {
				result.Department = d
				seen[key] = true
			}
		case "PRIORITY":
			if p, ok := enum.ParseEmailPriority(value); ok {
				result.Priority = p
				seen[key] = true
			}
		case "REASON":
			if value != "" {
				result.Reason = value
				seen[key] = true
			}
		}
	}

	if result.Reason == "" {
		result.Reason = missingReason
	}
	return result
}

func splitAnswerLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•#> \t")
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}

	key := strings.ToUpper(strings.Trim(line[:idx], "*_` \t"))
	value := strings.Trim(line[idx+1:], "*`\"' \t")
	if key != "REASON" {
		value = strings.TrimRight(value, ".")
	}
	return key, strings.TrimSpace(value), true
}
