package progression

var titles = []struct {
	minLevel int
	title    string
}{
	{50, "Suspiciously Productive"},
	{35, "Productivity Menace"},
	{20, "Main Character"},
	{10, "Functioning Human"},
	{5, "Slightly Functional"},
}

// DefaultTitle is held by everyone below level 5.
const DefaultTitle = "Wandering Potato"

// TitleForLevel returns the cosmetic title earned at level.
func TitleForLevel(level int) string {
	for _, t := range titles {
		if level >= t.minLevel {
			return t.title
		}
	}
	return DefaultTitle
}
