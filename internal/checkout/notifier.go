package checkout

import (
	"go.uber.org/zap"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is one user-facing message produced during checkout
type Notice struct {
	Level   NoticeLevel
	Field   string
	Message string
}

// Notifier surfaces checkout notices to the shopper
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to a zap logger
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(notice Notice) {
	fields := []zap.Field{zap.String("level", string(notice.Level))}
	if notice.Field != "" {
		fields = append(fields, zap.String("field", notice.Field))
	}

	if notice.Level == NoticeError {
		n.logger.Warn(notice.Message, fields...)
		return
	}
	n.logger.Info(notice.Message, fields...)
}
