package logger

import (
	"go.uber.org/zap"

	"slotdb"
)

// Zap sends slotdb events to a zap logger named "slotdb".
type Zap struct {
	sugar *zap.SugaredLogger
}

// NewZap returns a slotdb.Logger writing through l.
func NewZap(l *zap.Logger) slotdb.Logger {
	return &Zap{sugar: l.Named("slotdb").Sugar()}
}

func (z *Zap) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }
func (z *Zap) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z *Zap) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
