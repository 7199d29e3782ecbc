package utils

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig описывает настройки структурированного логирования.
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal (по умолчанию info)
	Format      string // json или text (по умолчанию json)
	Development bool   // включает человекочитаемый stacktrace и caller
	Output      string // путь к файлу; пусто = stderr
}

// Logger оборачивает *zap.Logger вместе с готовым sugared-логгером.
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitLogger создаёт новый Logger по заданной конфигурации.
// Никогда не возвращает nil: при некорректном Output молча переключается на stderr.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	var encoder zapcore.Encoder
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Format == "text" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	sink := zapcore.AddSync(os.Stderr)
	if cfg.Output != "" {
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			sink = zapcore.AddSync(f)
		}
		// падение на stderr при ошибке открытия файла, логгер никогда не nil
	}

	core := zapcore.NewCore(encoder, sink, level)

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zl := zap.New(core, opts...)

	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// InitGlobalLogger создаёт логгер и делает его глобальным.
func InitGlobalLogger(cfg LogConfig) *Logger {
	l := InitLogger(cfg)
	SetGlobalLogger(l)
	return l
}

// GetGlobalLogger возвращает глобальный логгер, создавая его с настройками
// по умолчанию при первом обращении.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// SetGlobalLogger устанавливает глобальный логгер явно.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// L - короткий алиас для GetGlobalLogger, удобен в местах вызова.
func L() *Logger {
	return GetGlobalLogger()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug", "DEBUG":
		return zapcore.DebugLevel
	case "info", "INFO":
		return zapcore.InfoLevel
	case "warn", "WARN", "warning", "WARNING":
		return zapcore.WarnLevel
	case "error", "ERROR":
		return zapcore.ErrorLevel
	case "fatal", "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// With возвращает новый Logger с дополнительными полями, привязанными ко всем записям.
func (l *Logger) With(fields ...zap.Field) *Logger {
	zl := l.Logger.With(fields...)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// WithComponent помечает логгер именем компонента (catalog, fetcher, scanner...).
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(Component(name))
}

// WithExchange помечает логгер именем площадки.
func (l *Logger) WithExchange(name string) *Logger {
	return l.With(Exchange(name))
}

// WithSymbol помечает логгер торговым символом.
func (l *Logger) WithSymbol(symbol string) *Logger {
	return l.With(Symbol(symbol))
}

// WithPairID помечает логгер числовым идентификатором.
func (l *Logger) WithPairID(id int) *Logger {
	return l.With(PairID(id))
}

// Sugar возвращает sugared-версию логгера для форматированных вызовов.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// ============================================================
// Глобальные функции логирования поверх GetGlobalLogger()
// ============================================================

func Debug(msg string, fields ...zap.Field) { GetGlobalLogger().Logger.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetGlobalLogger().Logger.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetGlobalLogger().Logger.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetGlobalLogger().Logger.Error(msg, fields...) }

func Debugf(format string, args ...interface{}) { GetGlobalLogger().sugar.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { GetGlobalLogger().sugar.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { GetGlobalLogger().sugar.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { GetGlobalLogger().sugar.Errorf(format, args...) }

// ============================================================
// Конструкторы доменных полей
// ============================================================

func Exchange(name string) zap.Field { return zap.String("exchange", name) }
func Symbol(symbol string) zap.Field { return zap.String("symbol", symbol) }
func PairID(id int) zap.Field        { return zap.Int("pair_id", id) }
func OrderID(id string) zap.Field    { return zap.String("order_id", id) }
func Price(v float64) zap.Field      { return zap.Float64("price", v) }
func Volume(v float64) zap.Field     { return zap.Float64("volume", v) }
func Spread(v float64) zap.Field     { return zap.Float64("spread", v) }
func PNL(v float64) zap.Field        { return zap.Float64("pnl", v) }
func Side(side string) zap.Field     { return zap.String("side", side) }
func State(state string) zap.Field   { return zap.String("state", state) }
func Latency(ms float64) zap.Field   { return zap.Float64("latency_ms", ms) }
func RequestID(id string) zap.Field  { return zap.String("request_id", id) }
func UserID(id int) zap.Field        { return zap.Int("user_id", id) }
func Component(name string) zap.Field { return zap.String("component", name) }

// Переэкспорт часто используемых конструкторов zap, чтобы вызывающий код
// не импортировал zap напрямую.
func String(key, value string) zap.Field          { return zap.String(key, value) }
func Int(key string, value int) zap.Field         { return zap.Int(key, value) }
func Int64(key string, value int64) zap.Field     { return zap.Int64(key, value) }
func Float64(key string, value float64) zap.Field { return zap.Float64(key, value) }
func Bool(key string, value bool) zap.Field       { return zap.Bool(key, value) }
func Err(err error) zap.Field                     { return zap.Error(err) }
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

func fieldsToInterface(fields []zap.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		for k, v := range enc.Fields {
			out = append(out, k, v)
		}
	}
	return out
}
