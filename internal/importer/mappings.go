package importer

import "strings"

// platformKeywords maps catalog vocabulary to the storefront platform
// taxonomy. Matching is case-insensitive substring on category then name.
var platformKeywords = []struct {
	keyword  string
	platform string
}{
	{"instagram", "instagram"},
	{" ig ", "instagram"},
	{"tiktok", "tiktok"},
	{"tik tok", "tiktok"},
	{"youtube", "youtube"},
	{"yt ", "youtube"},
	{"facebook", "facebook"},
	{" fb ", "facebook"},
	{"twitter", "twitter"},
	{"x.com", "twitter"},
	{"telegram", "telegram"},
	{"spotify", "spotify"},
	{"twitch", "twitch"},
	{"linkedin", "linkedin"},
	{"discord", "discord"},
	{"snapchat", "snapchat"},
	{"pinterest", "pinterest"},
	{"threads", "threads"},
	{"reddit", "reddit"},
	{"soundcloud", "soundcloud"},
}

// categoryAliases normalizes provider category spellings to storefront
// categories. Unknown categories pass through unchanged.
var categoryAliases = map[string]string{
	"ig followers":       "Followers",
	"followers":          "Followers",
	"follower":           "Followers",
	"likes":              "Likes",
	"like":               "Likes",
	"views":              "Views",
	"view":               "Views",
	"comments":           "Comments",
	"comment":            "Comments",
	"shares":             "Shares",
	"share":              "Shares",
	"subscribers":        "Subscribers",
	"subs":               "Subscribers",
	"watch time":         "Watch Time",
	"watchtime":          "Watch Time",
	"live stream views":  "Live Views",
	"livestream views":   "Live Views",
	"story views":        "Story Views",
	"reel views":         "Reel Views",
	"saves":              "Saves",
	"impressions":        "Impressions",
	"plays":              "Plays",
	"streams":            "Plays",
	"members":            "Members",
	"channel members":    "Members",
	"group members":      "Members",
	"retweets":           "Reposts",
	"reposts":            "Reposts",
	"upvotes":            "Upvotes",
	"website traffic":    "Traffic",
	"traffic":            "Traffic",
	"premium followers":  "Followers",
	"real followers":     "Followers",
	"targeted followers": "Followers",
}

// InferPlatform derives the storefront platform from a service's category
// and name. Unresolvable services land in "other".
func InferPlatform(category, name string) string {
	for _, haystack := range []string{category, name} {
		padded := " " + strings.ToLower(haystack) + " "
		for _, kw := range platformKeywords {
			if strings.Contains(padded, kw.keyword) {
				return kw.platform
			}
		}
	}
	return "other"
}

// NormalizeCategory maps a provider category onto the storefront taxonomy.
// The original is kept when no alias matches so operators can re-map later.
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return "Uncategorized"
	}

	key := strings.ToLower(trimmed)
	if mapped, ok := categoryAliases[key]; ok {
		return mapped
	}

	// Strip a leading platform word ("Instagram Followers" -> "Followers").
	if fields := strings.Fields(key); len(fields) > 1 {
		rest := strings.Join(fields[1:], " ")
		if mapped, ok := categoryAliases[rest]; ok {
			return mapped
		}
	}
	return trimmed
}
