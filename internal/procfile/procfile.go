// Package procfile loads the group definition file: an ordered list of
// groups, each holding alternative shell commands.
package procfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// DefaultLabel is used for a command line whose title has no [label].
const DefaultLabel = "default"

// DisabledLabel is the display label of the placeholder member.
const DisabledLabel = "disable"

// Member is one alternative within a group. It is either Disabled or a
// Command; switch on the concrete type.
type Member interface {
	Label() string
	member()
}

// Disabled is the placeholder member that runs nothing.
type Disabled struct{}

func (Disabled) Label() string { return DisabledLabel }
func (Disabled) member()       {}

// Command is a labelled shell command line.
type Command struct {
	Name string
	Argv string
}

func (c Command) Label() string { return c.Name }
func (Command) member()         {}

// Group is a titled set of members. Members[0] is always Disabled.
type Group struct {
	Title   string
	Members []Member
}

// IndexOf returns the index of the first member with the given label.
func (g Group) IndexOf(label string) int {
	for i, m := range g.Members {
		if m.Label() == label {
			return i
		}
	}
	return -1
}

var titleLabel = regexp.MustCompile(`^(.+)\[(.+)\]$`)

// Load reads and parses the file at path.
func Load(path string) ([]Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	groups, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

// Parse reads group definitions. Groups keep first-seen title order and
// members keep first-seen order within a title.
func Parse(r io.Reader) ([]Group, error) {
	var order []string
	members := make(map[string][]Member)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") && !strings.Contains(line, ":") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Commands may contain colons; only the first one separates.
		head, cmd, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':' in %q", lineNo, line)
		}
		title, label := splitTitle(strings.TrimSpace(head))
		if title == "" {
			return nil, fmt.Errorf("line %d: empty title", lineNo)
		}
		if _, seen := members[title]; !seen {
			order = append(order, title)
			members[title] = []Member{Disabled{}}
		}
		members[title] = append(members[title], Command{Name: label, Argv: strings.TrimSpace(cmd)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(order))
	for _, title := range order {
		groups = append(groups, Group{Title: title, Members: members[title]})
	}
	return groups, nil
}

func splitTitle(head string) (string, string) {
	if m := titleLabel.FindStringSubmatch(head); m != nil {
		return m[1], m[2]
	}
	return head, DefaultLabel
}
