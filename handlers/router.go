package handlers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lsst/elogbot/bot"
	"github.com/lsst/elogbot/elog"
)

// Command keywords understood by the bot.
const (
	GetCommand            = "/get"
	CategoryCommand       = "/cat"
	TagCommand            = "/tag"
	ListCategoriesCommand = "/listcat"
	ListTagsCommand       = "/listtags"
	ListMappingsCommand   = "/listmap"
	HelpCommand           = "/help"

	// TagTrigger marks a tag inside the text of a post.
	TagTrigger = '#'
)

// Kind is the operation a command maps to.
type Kind int

const (
	Post Kind = iota
	Fetch
	ListCategories
	ListTags
	ListMappings
	Help
)

func (k Kind) String() string {
	switch k {
	case Fetch:
		return "fetch"
	case ListCategories:
		return "list-categories"
	case ListTags:
		return "list-tags"
	case ListMappings:
		return "list-mappings"
	case Help:
		return "help"
	}
	return "post"
}

var prefixToKind = []struct {
	prefix string
	kind   Kind
}{
	{GetCommand, Fetch},
	{ListCategoriesCommand, ListCategories},
	{ListTagsCommand, ListTags},
	{ListMappingsCommand, ListMappings},
	{HelpCommand, Help},
}

// Classify returns the operation for the text of a command. Anything that
// is not a known command is a post.
func Classify(text string) Kind {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, p := range prefixToKind {
		if strings.HasPrefix(text, p.prefix) {
			return p.kind
		}
	}
	return Post
}

var helpText = strings.Join([]string{
	`Here's a list of supported commands`,
	`- "` + GetCommand + ` [entryID]" -> show an eLog entry`,
	`- "` + ListCategoriesCommand + `" -> list eLog categories`,
	`- "` + ListTagsCommand + `" -> list eLog tags`,
	`- "` + ListMappingsCommand + `" -> list channel and shorthand category mappings`,
	`- "[text] ` + CategoryCommand + ` [category] ` + TagCommand + ` [tag] #tag" -> post [text] to the eLog`,
	`Posts from a mapped channel don't need ` + CategoryCommand + `.`,
}, "\n")

// Logbook is the eLog service.
type Logbook interface {
	Get(ctx context.Context, id int) (string, error)
	Categories(ctx context.Context) (string, error)
	Tags(ctx context.Context) (string, error)
	Post(ctx context.Context, e *elog.Entry) (string, error)
}

// Config holds the static tables a Router resolves categories with.
type Config struct {
	// Categories maps channel names to logbook categories.
	Categories map[string]string
	// Aliases maps lower case shorthands to logbook categories.
	Aliases map[string]string
	// PermalinkBase is the Slack archive URL, e.g.
	// https://example.slack.com/archives
	PermalinkBase string
}

// Router turns commands into logbook operations.
type Router struct {
	categories    map[string]string
	aliases       map[string]string
	permalinkBase string
	logbook       Logbook
	directory     bot.Directory
	log           *zap.Logger
}

// NewRouter creates a Router.
func NewRouter(cfg Config, lb Logbook, dir bot.Directory, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	aliases := make(map[string]string, len(cfg.Aliases))
	for k, v := range cfg.Aliases {
		aliases[strings.ToLower(k)] = v
	}
	return &Router{
		categories:    cfg.Categories,
		aliases:       aliases,
		permalinkBase: strings.TrimSuffix(cfg.PermalinkBase, "/"),
		logbook:       lb,
		directory:     dir,
		log:           log,
	}
}

// Route runs cmd and returns the reply for the channel.
func (r *Router) Route(ctx context.Context, cmd bot.Command) (string, error) {
	text := strings.TrimSpace(cmd.Text)
	switch Classify(text) {
	case Fetch:
		return r.fetch(ctx, text[len(GetCommand):])
	case ListCategories:
		return r.listNames(ctx, r.logbook.Categories, "category", "Categories")
	case ListTags:
		return r.listNames(ctx, r.logbook.Tags, "tag", "Tags")
	case ListMappings:
		return r.mappings(), nil
	case Help:
		return helpText, nil
	}
	return r.post(ctx, cmd)
}

func (r *Router) fetch(ctx context.Context, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	id, err := strconv.Atoi(arg)
	if err != nil {
		return "", &MalformedEntryIDError{Input: arg, Err: err}
	}

	raw, err := r.logbook.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if msg, ok := elog.Render(raw); ok {
		return msg, nil
	}
	return raw, nil
}

func (r *Router) listNames(ctx context.Context, list func(context.Context) (string, error), elem, title string) (string, error) {
	raw, err := list(ctx)
	if err != nil {
		return "", err
	}

	names, err := elog.ParseNames(raw, elem)
	if err != nil || len(names) == 0 {
		return raw, nil
	}
	return title + ":\n- " + strings.Join(names, "\n- "), nil
}

func (r *Router) mappings() string {
	if len(r.categories) == 0 && len(r.aliases) == 0 {
		return "No channel or shorthand category mappings are configured."
	}

	var b strings.Builder
	if len(r.categories) > 0 {
		b.WriteString("Channel categories:\n")
		for _, k := range sortedKeys(r.categories) {
			fmt.Fprintf(&b, "- #%s -> %s\n", k, r.categories[k])
		}
	}
	if len(r.aliases) > 0 {
		b.WriteString("Category shorthands for " + CategoryCommand + ":\n")
		for _, k := range sortedKeys(r.aliases) {
			fmt.Fprintf(&b, "- %s -> %s\n", k, r.aliases[k])
		}
	}
	return strings.TrimSpace(b.String())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// resolveCategory picks the category for a post made in channel and returns
// the body left to post.
func (r *Router) resolveCategory(ctx context.Context, channel, text string) (category, body string, err error) {
	if name, ok := bot.Lookup(ctx, r.directory, bot.Channels, channel); ok {
		if category, ok := r.categories[name]; ok {
			return category, text, nil
		}
	}

	category, body, ok := ExtractParam(text, CategoryCommand, r.aliases)
	if !ok {
		return "", "", &MissingCategoryError{}
	}
	return category, body, nil
}

func (r *Router) post(ctx context.Context, cmd bot.Command) (string, error) {
	category, body, err := r.resolveCategory(ctx, cmd.Channel, strings.TrimSpace(cmd.Text))
	if err != nil {
		return "", err
	}

	author, hasAuthor := bot.Lookup(ctx, r.directory, bot.Users, cmd.User)

	raw, err := r.logbook.Tags(ctx)
	if err != nil {
		return "", fmt.Errorf("listing tags: %w", err)
	}
	valid, err := elog.ParseNames(raw, "tag")
	if err != nil {
		return "", fmt.Errorf("parsing tag list: %w", err)
	}

	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	if tag, rest, ok := ExtractParam(body, TagCommand, nil); ok {
		body = rest
		tag = strings.TrimPrefix(tag, string(TagTrigger))
		if canonical, ok := match(tag, valid); ok {
			add(canonical)
		} else {
			r.log.Debug("ignoring unknown tag", zap.String("tag", tag))
		}
	}
	for _, tag := range ExtractTags(body, TagTrigger, valid) {
		add(tag)
	}

	e := elog.NewEntry(category, body)
	e.Tags = tags
	if hasAuthor {
		e.SetValue("Author", author)
	}
	if link := r.permalink(cmd.Channel, cmd.Timestamp); link != "" {
		e.SetValue("URL", link)
	}

	r.log.Debug("posting entry",
		zap.String("category", category),
		zap.Strings("tags", tags),
		zap.Bool("author", hasAuthor))

	return r.logbook.Post(ctx, e)
}

// permalink builds the archive link of a message, Slack drops the dot from
// the timestamp: 1500000000.000100 -> p1500000000000100.
func (r *Router) permalink(channel, ts string) string {
	if r.permalinkBase == "" || channel == "" || ts == "" {
		return ""
	}
	return r.permalinkBase + "/" + channel + "/p" + strings.Replace(ts, ".", "", -1)
}
