package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/faq"
	"github.com/julianshen/rhobot/internal/output"
)

// FAQService is the FAQ flow the commands drive. *faq.Service satisfies it.
type FAQService interface {
	Get(ctx context.Context, serverID int64, query string) (*faq.Answer, error)
	Complete(serverID int64, partial string) []string
	List(ctx context.Context, serverID int64) ([]string, error)
	Add(ctx context.Context, serverID int64, d faq.Draft) (*faq.Saved, error)
	Remove(ctx context.Context, serverID int64, name string) (string, error)
	Link(ctx context.Context, serverID int64, name, target, author string) (string, error)
	Export(ctx context.Context, serverID int64, format faq.Format) (*faq.Dump, error)
	Drop(ctx context.Context, serverID int64, format faq.Format) (*faq.Dump, error)
	Import(ctx context.Context, serverID int64, author string, data []byte, format faq.Format) (int, error)
}

// Session identifies whose FAQ the commands act on: the server scope and
// the author recorded on edits.
type Session struct {
	ServerID int64
	Author   string
}

// NewFAQCommands creates faq, faqedit, export_faqs, import_faqs and
// drop_faqs over one service and session.
func NewFAQCommands(svc FAQService, session Session) []SlashCommand {
	return []SlashCommand{
		&faqCommand{svc: svc, session: session},
		&faqEditCommand{svc: svc, session: session},
		&exportFAQCommand{svc: svc, session: session},
		&importFAQCommand{svc: svc, session: session, readFile: os.ReadFile},
		&dropFAQCommand{svc: svc, session: session},
	}
}

// --- faq ---

type faqCommand struct {
	svc     FAQService
	session Session
}

func (c *faqCommand) Name() string        { return "faq" }
func (c *faqCommand) Description() string { return "Show an FAQ entry, or list them all" }
func (c *faqCommand) Aliases() []string   { return []string{"faw", "link", "tag", "tags"} }
func (c *faqCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{{Name: "name", Description: "FAQ entry to show"}}
}

func (c *faqCommand) Complete(_ context.Context, args []string) []Candidate {
	return names(limit(c.svc.Complete(c.session.ServerID, strings.Join(args, " "))))
}

func (c *faqCommand) Execute(ctx context.Context, args []string) (Result, error) {
	query := apidocs.StripComment(strings.Join(args, " "))
	if query == "" {
		list, err := c.svc.List(ctx, c.session.ServerID)
		if err != nil {
			return Result{}, err
		}
		return Result{Response: faq.ListResponse(list)}, nil
	}
	answer, err := c.svc.Get(ctx, c.session.ServerID, query)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: answer.Response()}, nil
}

// --- faqedit ---

var faqEditSubcommands = []string{"new", "add", "edit", "remove", "delete", "link"}

type faqEditCommand struct {
	svc     FAQService
	session Session
}

func (c *faqEditCommand) Name() string        { return "faqedit" }
func (c *faqEditCommand) Description() string { return "Add, edit, remove or link FAQ entries" }
func (c *faqEditCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{
		{Name: "action", Description: "What to do", Required: true, Static: faqEditSubcommands},
		{Name: "name", Description: "FAQ entry title"},
		{Name: "contents", Description: "Entry text, or the link target; --image sets the image URL"},
	}
}

func (c *faqEditCommand) usage() error {
	return &UsageError{
		Command: "faqedit",
		Usage:   "add <name> <contents> [--image url] | remove <name> | link <name> <target>",
	}
}

func (c *faqEditCommand) Complete(_ context.Context, args []string) []Candidate {
	switch len(args) {
	case 0:
		return names(faqEditSubcommands)
	case 1:
		return names(apidocs.WithPrefix(faqEditSubcommands, args[0]))
	case 2, 3:
		if args[0] == "new" || args[0] == "add" {
			return nil
		}
		if len(args) == 3 && args[0] != "link" {
			return nil
		}
		return names(limit(c.svc.Complete(c.session.ServerID, args[len(args)-1])))
	default:
		return nil
	}
}

func (c *faqEditCommand) Execute(ctx context.Context, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, c.usage()
	}
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "new", "add", "edit":
		if len(rest) == 0 {
			return Result{Action: ActionOpenFAQForm}, nil
		}
		d, err := parseDraft(rest)
		if err != nil {
			return Result{}, c.usage()
		}
		d.Author = c.session.Author
		saved, err := c.svc.Add(ctx, c.session.ServerID, d)
		if err != nil {
			return Result{}, err
		}
		return Result{Response: saved.Response()}, nil
	case "remove", "delete":
		if len(rest) == 0 {
			return Result{}, c.usage()
		}
		msg, err := c.svc.Remove(ctx, c.session.ServerID, strings.Join(rest, " "))
		if err != nil {
			return Result{}, err
		}
		return Message(msg), nil
	case "link":
		if len(rest) != 2 {
			return Result{}, c.usage()
		}
		msg, err := c.svc.Link(ctx, c.session.ServerID, rest[0], rest[1], c.session.Author)
		if err != nil {
			return Result{}, err
		}
		return Message(msg), nil
	default:
		return Result{}, c.usage()
	}
}

// parseDraft reads "<name> <contents...> [--image url]".
func parseDraft(args []string) (faq.Draft, error) {
	var (
		d     faq.Draft
		words []string
	)
	for i := 0; i < len(args); i++ {
		if args[i] == "--image" {
			if i+1 >= len(args) {
				return d, fmt.Errorf("--image needs a value")
			}
			d.Image = args[i+1]
			i++
			continue
		}
		words = append(words, args[i])
	}
	if len(words) == 0 {
		return d, fmt.Errorf("missing name")
	}
	d.Name = words[0]
	d.Contents = strings.Join(words[1:], " ")
	return d, nil
}

// SaveDraft stores an entry collected interactively and returns the
// confirmation result.
func SaveDraft(ctx context.Context, svc FAQService, session Session, d faq.Draft) (Result, error) {
	d.Author = session.Author
	saved, err := svc.Add(ctx, session.ServerID, d)
	if err != nil {
		return Result{}, err
	}
	return Result{Response: saved.Response()}, nil
}

// --- export_faqs ---

var dumpFormats = []string{string(faq.FormatJSON), string(faq.FormatYAML)}

type exportFAQCommand struct {
	svc     FAQService
	session Session
}

func (c *exportFAQCommand) Name() string        { return "export_faqs" }
func (c *exportFAQCommand) Description() string { return "Export all FAQ entries to a file" }
func (c *exportFAQCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{{Name: "format", Description: "Dump encoding", Static: dumpFormats}}
}

func (c *exportFAQCommand) Complete(_ context.Context, args []string) []Candidate {
	if len(args) > 1 {
		return nil
	}
	return names(apidocs.WithPrefix(dumpFormats, strings.Join(args, "")))
}

func (c *exportFAQCommand) Execute(ctx context.Context, args []string) (Result, error) {
	format, err := faq.ParseFormat(strings.Join(args, ""))
	if err != nil {
		return Result{}, err
	}
	dump, err := c.svc.Export(ctx, c.session.ServerID, format)
	if err != nil {
		return Result{}, err
	}
	return dumpResult(faq.DumpMessage, dump), nil
}

func dumpResult(msg string, dump *faq.Dump) Result {
	return Result{
		Response:   &output.Response{Description: msg},
		Attachment: &Attachment{Name: dump.FileName, Data: dump.Data},
	}
}

// --- import_faqs ---

type importFAQCommand struct {
	svc      FAQService
	session  Session
	readFile func(string) ([]byte, error)
}

func (c *importFAQCommand) Name() string        { return "import_faqs" }
func (c *importFAQCommand) Description() string { return "Import FAQ entries from a JSON or YAML dump" }
func (c *importFAQCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{
		{Name: "path", Description: "Dump file to read", Required: true},
		{Name: "format", Description: "Overrides the format implied by the file extension", Static: dumpFormats},
	}
}

func (c *importFAQCommand) Complete(_ context.Context, args []string) []Candidate {
	if len(args) != 2 {
		return nil
	}
	return names(apidocs.WithPrefix(dumpFormats, args[1]))
}

func (c *importFAQCommand) Execute(ctx context.Context, args []string) (Result, error) {
	if len(args) == 0 || len(args) > 2 {
		return Result{}, &UsageError{Command: "import_faqs", Usage: "<path> [json|yaml]"}
	}
	format := faq.FormatForFile(args[0])
	if len(args) == 2 {
		var err error
		if format, err = faq.ParseFormat(args[1]); err != nil {
			return Result{}, err
		}
	}
	data, err := c.readFile(args[0])
	if err != nil {
		return Result{}, fmt.Errorf("read dump: %w", err)
	}
	n, err := c.svc.Import(ctx, c.session.ServerID, c.session.Author, data, format)
	if err != nil {
		return Result{}, fmt.Errorf("import after %d entries: %w", n, err)
	}
	return Message(fmt.Sprintf("%s (%d)", faq.ImportMessage, n)), nil
}

// --- drop_faqs ---

type dropFAQCommand struct {
	svc     FAQService
	session Session
}

func (c *dropFAQCommand) Name() string { return "drop_faqs" }
func (c *dropFAQCommand) Description() string {
	return "Delete every FAQ entry after writing a backup dump"
}
func (c *dropFAQCommand) Arguments() []ArgumentDef {
	return []ArgumentDef{
		{Name: "confirm", Description: "Must be \"yes\"", Required: true, Static: []string{"yes"}},
		{Name: "format", Description: "Backup encoding", Static: dumpFormats},
	}
}

func (c *dropFAQCommand) Complete(_ context.Context, _ []string) []Candidate {
	return nil
}

func (c *dropFAQCommand) Execute(ctx context.Context, args []string) (Result, error) {
	if len(args) == 0 || args[0] != "yes" {
		return Result{}, &UsageError{Command: "drop_faqs", Usage: "yes [json|yaml]"}
	}
	format, err := faq.ParseFormat(strings.Join(args[1:], ""))
	if err != nil {
		return Result{}, err
	}
	dump, err := c.svc.Drop(ctx, c.session.ServerID, format)
	if err != nil {
		return Result{}, err
	}
	return dumpResult(faq.DropMessage, dump), nil
}
