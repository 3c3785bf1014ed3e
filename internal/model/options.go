package model

// Options configures the Builder. The public adapter in pkg/model constructs
// them and passes them into New.
type Options struct {
	Labeler func(string) string
}

func defaultOptions() Options {
	return Options{Labeler: DefaultLabeler}
}
