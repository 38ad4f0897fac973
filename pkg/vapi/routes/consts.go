package routes

var (
	BearerAuth = []map[string][]string{
		{"bearer": {}},
	}
)

type Tag string

const (
	TagOAuth Tag = "oauth"
	TagToken Tag = "token"
	TagUsers Tag = "users"
)

func (t Tag) String() string { return string(t) }
