package startup

import (
	"net"
	"strings"

	"go.uber.org/zap"
)

const (
	fallbackHost = "localhost"
	docsPath     = "swagger-ui/index.html"
	spacer       = "  "
	lineBreak    = "\n"
)

var separator = strings.Repeat("-", 58)

// Formatter renders startup traces.
type Formatter struct {
	logger  *zap.Logger
	resolve HostResolver
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithHostResolver overrides how the external host address is found, primarily for tests.
func WithHostResolver(resolve HostResolver) FormatterOption {
	return func(f *Formatter) {
		f.resolve = resolve
	}
}

// NewFormatter builds a Formatter that reports resolution problems to logger.
func NewFormatter(logger *zap.Logger, opts ...FormatterOption) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &Formatter{
		logger:  logger,
		resolve: LocalHostAddress,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Trace renders a startup trace with the default host resolver and no logging.
func Trace(snapshot Snapshot, hasAPIDocs bool) string {
	return NewFormatter(nil).Format(snapshot, hasAPIDocs)
}

// Format renders the trace for snapshot. URL lines carry the Swagger UI path
// when hasAPIDocs is set. Missing values drop their line instead of failing.
func (f *Formatter) Format(snapshot Snapshot, hasAPIDocs bool) string {
	b := &traceBuilder{}
	b.appendSeparator()
	b.append(applicationRunning(snapshot))

	if snapshot.HasWebServer() {
		b.append(urlLine("Local", fallbackHost, snapshot, hasAPIDocs))
		b.append(urlLine("External", f.hostAddress(), snapshot, hasAPIDocs))
	}

	b.append(profilesLine(snapshot))
	b.appendSeparator()

	if status := snapshot.value(PropertyConfigServerStatus); !isBlank(status) {
		b.append("Config Server: " + status)
		b.appendSeparator()
	}

	return b.String()
}

func (f *Formatter) hostAddress() string {
	addr, err := f.resolve()
	if err != nil || isBlank(addr) {
		f.logger.Warn("the host name could not be determined, using localhost as fallback", zap.Error(err))
		return fallbackHost
	}
	return addr
}

func applicationRunning(snapshot Snapshot) string {
	name := snapshot.value(PropertyApplicationName)
	if isBlank(name) {
		return "Application is running!"
	}
	return "Application '" + name + "' is running!"
}

func urlLine(kind, host string, snapshot Snapshot, hasAPIDocs bool) string {
	var sb strings.Builder
	sb.WriteString(kind)
	sb.WriteString(": \t")
	sb.WriteString(protocol(snapshot))
	sb.WriteString("://")
	sb.WriteString(net.JoinHostPort(host, snapshot.value(PropertyServerPort)))
	sb.WriteString(contextPath(snapshot))
	if hasAPIDocs {
		sb.WriteString(docsPath)
	}
	return sb.String()
}

func protocol(snapshot Snapshot) string {
	if isBlank(snapshot.value(PropertyKeyStore)) {
		return "http"
	}
	return "https"
}

func contextPath(snapshot Snapshot) string {
	path := snapshot.value(PropertyContextPath)
	if isBlank(path) {
		return "/"
	}
	return path
}

func profilesLine(snapshot Snapshot) string {
	if len(snapshot.profiles) == 0 {
		return ""
	}
	return "Profile(s): \t" + strings.Join(snapshot.profiles, ", ")
}

type traceBuilder struct {
	sb strings.Builder
}

func (b *traceBuilder) appendSeparator() {
	b.sb.WriteString(separator)
	b.sb.WriteString(lineBreak)
}

// append skips empty lines.
func (b *traceBuilder) append(line string) {
	if line == "" {
		return
	}
	b.sb.WriteString(spacer)
	b.sb.WriteString(line)
	b.sb.WriteString(lineBreak)
}

func (b *traceBuilder) String() string {
	return b.sb.String()
}
