package context

type Key string

const (
	Claims Key = "claims"
	User   Key = "user"
	Org    Key = "org"
	Params Key = "params"
)
