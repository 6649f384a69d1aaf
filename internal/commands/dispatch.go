package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/faq"
	"github.com/julianshen/rhobot/internal/fff"
	"github.com/julianshen/rhobot/internal/integrations"
	"github.com/julianshen/rhobot/internal/logging"
	"github.com/julianshen/rhobot/internal/modportal"
	"github.com/julianshen/rhobot/internal/output"
	"github.com/julianshen/rhobot/internal/wiki"
)

// GenericErrorMessage is shown for failures with no user-facing text.
const GenericErrorMessage = "Something went wrong, please try again later."

// UsageError reports malformed command input.
type UsageError struct {
	Command string
	Usage   string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("Usage: %s %s", e.Command, e.Usage)
}

// UnknownCommandError reports a command name nothing is registered under.
type UnknownCommandError struct{ Name string }

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command `%s`. Try `help`.", e.Name)
}

// expected reports errors caused by user input rather than by the bot.
func expected(err error) bool {
	var (
		apiNotFound  *apidocs.NotFoundError
		noResults    *wiki.NoSearchResultsError
		wikiNotFound *wiki.PageNotFoundError
		faqNotFound  *faq.NotFoundError
		faqMissing   *faq.NotInDatabaseError
		faqExists    *faq.AlreadyExistsError
		fffNotFound  *fff.PageNotFoundError
		noMods       *modportal.NoResultsError
		usage        *UsageError
		unknown      *UnknownCommandError
	)
	switch {
	case errors.As(err, &apiNotFound),
		errors.As(err, &noResults),
		errors.As(err, &wikiNotFound),
		errors.As(err, &faqNotFound),
		errors.As(err, &faqMissing),
		errors.As(err, &faqExists),
		errors.As(err, &fffNotFound),
		errors.As(err, &noMods),
		errors.As(err, &usage),
		errors.As(err, &unknown):
		return true
	}
	return errors.Is(err, apidocs.ErrNoTypeProperties) ||
		errors.Is(err, faq.ErrTitleTooLong) ||
		errors.Is(err, faq.ErrBodyTooLong) ||
		errors.Is(err, faq.ErrUnknownFormat)
}

func badStatus(err error) bool {
	var (
		fffStatus  *fff.BadStatusError
		modStatus  *modportal.BadStatusError
		httpStatus *integrations.StatusError
	)
	return errors.As(err, &fffStatus) || errors.As(err, &modStatus) || errors.As(err, &httpStatus)
}

// sentinelMessages holds the text shown for sentinel errors.
var sentinelMessages = []struct {
	err error
	msg string
}{
	{apidocs.ErrNoTypeProperties, "Type has no properties"},
	{wiki.ErrRetrieve, "Error retrieving wiki page."},
	{fff.ErrRetrieve, "Error retrieving FFF."},
	{fff.ErrHeadNotFound, "Failed to read FFF page: html `head` not found."},
	{fff.ErrTitleNotFound, "Failed to read FFF page: could not find title."},
	{fff.ErrImageNotFound, "Failed to read FFF page: could not find thumbnail."},
	{fff.ErrBodyNotFound, "Failed to read FFF page: could not find body text."},
	{modportal.ErrNoCredentials, "Mod portal credentials are not configured."},
	{modportal.ErrRetrieve, "Error retrieving mod search results."},
}

// described reports infrastructure errors that carry a message worth
// showing as is. An empty cache is not one of them.
func described(err error) bool {
	var dbErr *faq.DatabaseError
	return errors.As(err, &dbErr) || badStatus(err)
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}
	if expected(err) || described(err) {
		return err.Error()
	}
	return GenericErrorMessage
}

// LevelFor maps an error to the level it is logged at: input mistakes at
// info, upstream status failures at warn, everything else at error.
func LevelFor(err error) zapcore.Level {
	switch {
	case expected(err):
		return zapcore.InfoLevel
	case badStatus(err):
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// SplitArgs splits a command line on whitespace. Double quotes group words
// and a backslash escapes the next character inside quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasWord bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
		case r == '"':
			inQuote = !inQuote
			hasWord = true
		case !inQuote && unicode.IsSpace(r):
			if hasWord {
				args = append(args, cur.String())
				cur.Reset()
				hasWord = false
			}
		default:
			cur.WriteRune(r)
			hasWord = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if hasWord {
		args = append(args, cur.String())
	}
	return args, nil
}

// QuoteArg quotes s for SplitArgs when it is empty or holds whitespace,
// quotes or backslashes.
func QuoteArg(s string) string {
	if s != "" && !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '\\'
	}) {
		return s
	}
	s = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
	return `"` + s + `"`
}

// JoinArgs is the inverse of SplitArgs.
func JoinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = QuoteArg(a)
	}
	return strings.Join(quoted, " ")
}

// Dispatcher parses command lines, runs them and turns failures into error
// responses.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
	newID    func() string
}

// NewDispatcher creates a dispatcher over registry. A nil logger discards
// output.
func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logging.OrNop(logger),
		newID:    uuid.NewString,
	}
}

// Registry returns the registry commands are looked up in.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Run executes one command line. A leading "/" or "!" is ignored. Errors
// are logged and returned as a Result carrying an error response.
func (d *Dispatcher) Run(ctx context.Context, line string) Result {
	logger := d.logger.With(zap.String("request_id", d.newID()))
	res, err := d.run(ctx, line, logger)
	if err != nil {
		logger.Check(LevelFor(err), "command failed").Write(
			zap.String("line", line), zap.Error(err))
		return Result{Response: output.ErrorResponse(UserMessage(err))}
	}
	if res.Response != nil {
		res.Response.Clamp()
	}
	return res
}

func (d *Dispatcher) run(ctx context.Context, line string, logger *zap.Logger) (Result, error) {
	args, err := SplitArgs(strings.TrimLeft(strings.TrimSpace(line), "/!"))
	if err != nil {
		return Result{}, &UsageError{Command: "command", Usage: err.Error()}
	}
	if len(args) == 0 {
		return Result{}, nil
	}
	cmd, ok := d.registry.Get(args[0])
	if !ok {
		// Plain chat text may still carry an inline [[term]] wiki query.
		term, inline := wiki.InlineQuery(line)
		if cmd, ok = d.registry.Get("wiki"); !inline || !ok {
			return Result{}, &UnknownCommandError{Name: args[0]}
		}
		args = []string{"wiki", term}
	}
	logger.Debug("running command", zap.String("command", cmd.Name()), zap.Int("args", len(args)-1))
	return cmd.Execute(ctx, args[1:])
}

// Complete suggests completions for a partial command line. With no
// complete word yet it offers command names.
func (d *Dispatcher) Complete(ctx context.Context, line string) []Candidate {
	trimmed := strings.TrimLeft(line, "/!")
	args, err := SplitArgs(trimmed)
	if err != nil {
		return nil
	}
	if len(args) == 0 || (len(args) == 1 && !strings.HasSuffix(trimmed, " ")) {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		return d.registry.Match(prefix)
	}
	cmd, ok := d.registry.Get(args[0])
	if !ok {
		return nil
	}
	rest := args[1:]
	if strings.HasSuffix(trimmed, " ") {
		rest = append(rest, "")
	}
	return cmd.Complete(ctx, rest)
}
