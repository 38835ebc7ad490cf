package discovery

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notice is a transient, dismissible message for the user.
type Notice struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

func notify(n Notifier, level Level, msg string) {
	if n != nil {
		n.Notify(Notice{Level: level, Message: msg})
	}
}
