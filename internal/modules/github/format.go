package github

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Compact formatters per tool — pure transformation: (toolName, JSON) → string
// =============================================================================

func formatCompact(toolName, jsonStr string) string {
	switch toolName {
	case "search_repositories":
		return searchResultsToCSV(jsonStr)
	case "get_file_contents":
		return contentsToCompact(jsonStr)
	case "create_pull_request":
		return pickKeys(jsonStr, "number", "state", "title", "html_url")
	default:
		return jsonStr
	}
}

// pickKeys extracts only the specified keys from a JSON object.
func pickKeys(jsonStr string, keys ...string) string {
	var data map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return jsonStr
	}
	result := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := data[k]; ok && v != nil {
			result[k] = v
		}
	}
	out, err := json.Marshal(result)
	if err != nil {
		return jsonStr
	}
	return string(out)
}

// searchResultsToCSV: full_name,stars,description
func searchResultsToCSV(jsonStr string) string {
	var res struct {
		TotalCount int              `json:"total_count"`
		Page       int              `json:"page"`
		PerPage    int              `json:"per_page"`
		Items      []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &res); err != nil {
		return jsonStr
	}
	if len(res.Items) == 0 {
		return fmt.Sprintf("# 0 repositories (of %d total)", res.TotalCount)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %d repositories (page %d, %d total)\n", len(res.Items), res.Page, res.TotalCount))
	sb.WriteString("```csv\nfull_name,stars,description\n")
	for _, item := range res.Items {
		sb.WriteString(fmt.Sprintf("%s,%d,%s\n",
			csvEscape(str(item, "full_name")),
			intVal(item, "stargazers_count"),
			csvEscape(str(item, "description"))))
	}
	sb.WriteString("```")
	return sb.String()
}

// contentsToCompact: file metadata or directory listing
func contentsToCompact(jsonStr string) string {
	var res struct {
		Kind    string           `json:"kind"`
		Entry   map[string]any   `json:"entry"`
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &res); err != nil {
		return jsonStr
	}

	switch res.Kind {
	case "file":
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# %s\n", str(res.Entry, "path")))
		sb.WriteString(fmt.Sprintf("- **SHA**: %s\n", str(res.Entry, "sha")))
		sb.WriteString(fmt.Sprintf("- **Size**: %d bytes\n", intVal(res.Entry, "size")))
		sb.WriteString(fmt.Sprintf("- **Encoding**: %s\n", str(res.Entry, "encoding")))
		if content := str(res.Entry, "content"); content != "" {
			sb.WriteString(fmt.Sprintf("- **Content**: %s\n", content))
		}
		return strings.TrimSuffix(sb.String(), "\n")
	case "directory":
		if len(res.Entries) == 0 {
			return "# empty directory"
		}
		var sb strings.Builder
		sb.WriteString("```csv\ntype,name,size\n")
		for _, e := range res.Entries {
			sb.WriteString(fmt.Sprintf("%s,%s,%d\n",
				str(e, "type"),
				csvEscape(str(e, "name")),
				intVal(e, "size")))
		}
		sb.WriteString("```")
		return sb.String()
	default:
		return jsonStr
	}
}

func str(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func intVal(obj map[string]any, key string) int64 {
	if v, ok := obj[key].(float64); ok {
		return int64(v)
	}
	return 0
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
