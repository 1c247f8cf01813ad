package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type badArgError struct {
	name  string
	value string
}

func (e badArgError) Error() string {
	return fmt.Sprintf("invalid %s: %q (want a non-negative integer)", e.name, e.value)
}
