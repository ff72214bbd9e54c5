package scoring

type threshold struct {
	min   int
	label string
}

var gradeThresholds = []threshold{
	{95, "A+"}, {90, "A"}, {85, "A-"},
	{80, "B+"}, {75, "B"}, {70, "B-"},
	{65, "C+"}, {60, "C"}, {55, "C-"},
	{50, "D"},
}

var verdictThresholds = []threshold{
	{85, "Low Risk"},
	{70, "Moderate Risk"},
	{50, "Elevated Risk"},
}

// Grades from worst to best.
var GradeOrder = []string{"F", "D", "C-", "C", "C+", "B-", "B", "B+", "A-", "A", "A+"}

// Grade maps a total to its letter grade.
func Grade(total int) string {
	return lookup(gradeThresholds, total, "F")
}

// Verdict maps a total to its risk verdict.
func Verdict(total int) string {
	return lookup(verdictThresholds, total, "High Risk")
}

func lookup(table []threshold, total int, fallback string) string {
	for _, t := range table {
		if total >= t.min {
			return t.label
		}
	}
	return fallback
}
