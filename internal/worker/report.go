package worker

import (
	"fmt"
	"strings"

	"titledoctor/features/job"
)

// BuildReport renders the plain-text title report. Pure function over
// the generated titles so rendering is testable apart from delivery.
func BuildReport(channelName string, titles []job.ImprovedTitle) string {
	var b strings.Builder

	b.WriteString("YouTube Title Doctor Report\n")
	fmt.Fprintf(&b, "Channel: %s\n", channelName)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for i, item := range titles {
		fmt.Fprintf(&b, "Video %d\n", i+1)
		fmt.Fprintf(&b, "Original: %s\n\n", item.Original)

		for _, v := range item.Variants {
			fmt.Fprintf(&b, "%s TITLE:\n%s\n", strings.ToUpper(v.Style), v.Title)
			if v.Reason != "" {
				fmt.Fprintf(&b, "Why: %s\n", v.Reason)
			}
			fmt.Fprintf(&b, "Score: %d/100\n\n", v.Score)
		}

		if len(item.ThumbnailTexts) > 0 {
			b.WriteString("THUMBNAIL TEXT IDEAS:\n")
			for _, t := range item.ThumbnailTexts {
				fmt.Fprintf(&b, "- %s\n", t)
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "Video link: %s\n", item.URL)
		b.WriteString(strings.Repeat("-", 60) + "\n\n")
	}

	if summary := buildSummary(titles); summary != "" {
		b.WriteString(summary)
	}

	return b.String()
}

// buildSummary lists the recommended pick per video when there is more
// than one variant to choose from.
func buildSummary(titles []job.ImprovedTitle) string {
	multi := false
	for _, t := range titles {
		if len(t.Variants) > 1 {
			multi = true
			break
		}
	}
	if !multi {
		return ""
	}

	var b strings.Builder
	b.WriteString("RECOMMENDED PICKS:\n")
	for i, t := range titles {
		best := t.Best()
		fmt.Fprintf(&b, "%d. %s (%s, %d/100)\n", i+1, best.Title, best.Style, best.Score)
	}
	return b.String()
}

// BuildFailureNotice renders the fixed-template failure email.
func BuildFailureNotice(errMsg string) string {
	return fmt.Sprintf(`Hello,

We encountered an issue while processing your YouTube title improvement request.

Error Details:
%s

Please try again later or contact support if the issue persists.

Best regards,
YouTube Title Doctor
`, errMsg)
}
