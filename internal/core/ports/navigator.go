package ports

// Navigator tells the presentation layer where to go next.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }
