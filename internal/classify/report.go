package classify

import (
	"fmt"
	"log"
	"strconv"
)

// groupThousands renders n with comma thousands separators, since Go's fmt
// has no equivalent of Java's "%,d" used throughout the original
// diagnostic output this mirrors.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// PrintSummary reproduces the comma-grouped diagnostic lines of the
// original classification driver.
func PrintSummary(s Summary, cNames []string) {
	log.Printf("Total reads:  %15s", groupThousands(s.ReadsFound))
	if s.TotalWeight > float64(s.ReadsFound) {
		log.Printf("Total weight: %15s", groupThousands(int64(s.TotalWeight)))
	}
	if s.ReadsLowComplexity > 0 {
		log.Printf("Low complexity:%15s", groupThousands(s.ReadsLowComplexity))
	}
	if s.ReadsCoverageRejected > 0 {
		log.Printf("Low covered:   %15s", groupThousands(int64(s.ReadsCoverageRejected)))
	}
	log.Printf("With hits:     %15s ", groupThousands(s.ReadsWithHits))
	log.Printf("Alignments:    %15s", groupThousands(s.NumberOfMatches))
	for _, c := range cNames {
		log.Printf("%-19s%11s", "Assig. "+c+":", groupThousands(int64(s.CountAssigned[c])))
	}
	if s.AssignedViaMate > 0 {
		log.Printf("Tax. ass. by mate:%12s", groupThousands(s.AssignedViaMate))
	}
}

// PrintClassificationSizes reports the post-commit size of every
// classification, matching the original driver's closing log lines.
func PrintClassificationSizes(connector Connector, cNames []string) {
	for _, c := range cNames {
		log.Printf("Class. %-13s%10s", c+":", groupThousands(int64(connector.ClassificationSize(c))))
	}
}

// FormatMinSupport is used by Pipeline.Run to echo the derived absolute
// min-support value.
func FormatMinSupport(n int) string {
	return fmt.Sprintf("MinSupport set to: %d", n)
}
