package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// chapterWords resolves spelled-out chapter numbers across the book's full
// chapter range. Headers use either form ("CHAPTER ELEVEN", "CHAPTER 11").
var chapterWords = map[string]int{
	"ONE":       1,
	"TWO":       2,
	"THREE":     3,
	"FOUR":      4,
	"FIVE":      5,
	"SIX":       6,
	"SEVEN":     7,
	"EIGHT":     8,
	"NINE":      9,
	"TEN":       10,
	"ELEVEN":    11,
	"TWELVE":    12,
	"THIRTEEN":  13,
	"FOURTEEN":  14,
	"FIFTEEN":   15,
	"SIXTEEN":   16,
	"SEVENTEEN": 17,
	"EIGHTEEN":  18,
}

// headerPattern matches a chapter marker. The payload captures a whole word,
// so compound names resolve correctly (EIGHTEEN is never read as EIGHT).
var headerPattern = regexp.MustCompile(`CHAPTER\s+([A-Za-z]+|[0-9]+)\b`)

// FindChapterHeader scans loose text for a chapter marker. It returns the
// matched phrase and the resolved chapter number; chapter is 0 when the
// payload is not a known word or a number. found is false when the text has
// no marker at all.
func FindChapterHeader(text string) (phrase string, chapter int, found bool) {
	upper := strings.ToUpper(text)
	m := headerPattern.FindStringSubmatch(upper)
	if m == nil {
		return "", 0, false
	}
	phrase = strings.Join(strings.Fields(m[0]), " ")
	payload := m[1]

	if n, ok := chapterWords[payload]; ok {
		return phrase, n, true
	}
	if n, err := strconv.Atoi(payload); err == nil && n > 0 {
		return phrase, n, true
	}
	return phrase, 0, true
}
