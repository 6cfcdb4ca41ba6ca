package readme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/reggie-db/reggie-build/internal/ui"
	"github.com/rs/zerolog/log"
)

// ErrHelp is returned when a help command fails.
var ErrHelp = errors.New("help command failed")

var (
	beginRe = regexp.MustCompile(`\s*<!--\s*BEGIN:help\s+([^>]+?)\s*-->\s*`)

	optionsHeaderRe = regexp.MustCompile(`\bOptions\b.*[-─]`)
	optionsFooterRe = regexp.MustCompile(`^\s*[-─╰╯]+`)
	helpRowRe       = regexp.MustCompile(`^\s*[│|]?\s*--help\b`)
)

// Runner produces the raw help output of a command.
type Runner interface {
	Help(ctx context.Context, cmd string) (string, error)
}

// ShellRunner runs "<cmd> --help" through sh in Dir.
type ShellRunner struct {
	Dir string
}

func (r ShellRunner) Help(ctx context.Context, cmd string) (string, error) {
	c := exec.CommandContext(ctx, "sh", "-c", cmd+" --help") //nolint:gosec // commands come from the README being updated
	c.Dir = r.Dir
	out, err := c.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s --help: %v: %s", ErrHelp, cmd, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Block is one help block found in a README. Start and End span the
// sentinels together with the whitespace around them.
type Block struct {
	Cmd        string
	Start, End int
}

// Blocks returns the help blocks of content in order. A BEGIN sentinel
// without a matching END is ignored.
func Blocks(content string) []Block {
	var blocks []Block
	pos := 0
	for pos < len(content) {
		m := beginRe.FindStringSubmatchIndex(content[pos:])
		if m == nil {
			break
		}
		cmd := content[pos+m[2] : pos+m[3]]
		endRe := regexp.MustCompile(`\s*<!--\s*END:help\s+` + regexp.QuoteMeta(cmd) + `\s*-->\s*`)
		e := endRe.FindStringIndex(content[pos+m[1]:])
		if e == nil {
			pos += m[1]
			continue
		}
		end := pos + m[1] + e[1]
		blocks = append(blocks, Block{Cmd: cmd, Start: pos + m[0], End: end})
		pos = end
	}
	return blocks
}

// Commands returns the distinct commands named by the help blocks of
// content.
func Commands(content string) []string {
	return commands(Blocks(content))
}

func commands(blocks []Block) []string {
	var cmds []string
	seen := make(map[string]bool)
	for _, b := range blocks {
		if !seen[b.Cmd] {
			seen[b.Cmd] = true
			cmds = append(cmds, b.Cmd)
		}
	}
	return cmds
}

// CleanHelp drops the --help row from option boxes and removes option
// boxes left with no other rows.
func CleanHelp(raw string) string {
	var out, box []string
	inBox := false
	for _, line := range strings.Split(raw, "\n") {
		if optionsHeaderRe.MatchString(line) {
			inBox = true
			box = []string{line}
			continue
		}
		if !inBox {
			out = append(out, line)
			continue
		}
		box = append(box, line)
		if !optionsFooterRe.MatchString(line) {
			continue
		}
		if hasOptions(box) {
			for _, l := range box {
				if !helpRowRe.MatchString(l) {
					out = append(out, l)
				}
			}
		}
		box, inBox = nil, false
	}
	out = append(out, box...)
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func hasOptions(box []string) bool {
	for _, l := range box {
		if strings.TrimSpace(l) == "" || helpRowRe.MatchString(l) ||
			optionsHeaderRe.MatchString(l) || optionsFooterRe.MatchString(l) {
			continue
		}
		return true
	}
	return false
}

// Render formats a help block for cmd with the cleaned help text.
func Render(cmd, help string) string {
	return fmt.Sprintf("\n\n<!-- BEGIN:help %s -->\n```bash\n%s\n```\n<!-- END:help %s -->\n\n", cmd, help, cmd)
}

// Update returns content with every help block refreshed. Help commands run
// concurrently, at most jobs at a time. progress may be nil.
func Update(ctx context.Context, content string, r Runner, jobs int, progress *ui.Progress) (string, error) {
	blocks := Blocks(content)
	if len(blocks) == 0 {
		return content, nil
	}
	cmds := commands(blocks)
	log.Debug().Int("commands", len(cmds)).Int("jobs", jobs).Msg("Running help commands")

	help, err := runAll(ctx, cmds, r, max(jobs, 1), progress)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	last := 0
	for _, blk := range blocks {
		b.WriteString(content[last:blk.Start])
		b.WriteString(Render(blk.Cmd, help[blk.Cmd]))
		last = blk.End
	}
	b.WriteString(content[last:])
	return b.String(), nil
}

func runAll(ctx context.Context, cmds []string, r Runner, jobs int, progress *ui.Progress) (map[string]string, error) {
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	var mu sync.Mutex
	help := make(map[string]string, len(cmds))
	errCh := make(chan error, len(cmds))

	for _, cmd := range cmds {
		wg.Add(1)
		go func(cmd string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			raw, err := r.Help(ctx, cmd)
			if progress != nil {
				progress.Done(cmd+" --help", err)
			}
			if err != nil {
				errCh <- err
				return
			}
			mu.Lock()
			help[cmd] = CleanHelp(raw)
			mu.Unlock()
		}(cmd)
	}

	wg.Wait()
	close(errCh)

	for e := range errCh {
		return nil, e
	}
	return help, nil
}

// UpdateFile refreshes the help blocks of the README at path. When write is
// set and the content changed, the file is rewritten. It returns the updated
// content and whether it differs from the original.
func UpdateFile(ctx context.Context, path string, r Runner, jobs int, progress *ui.Progress, write bool) (string, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // README path chosen by the user
	if err != nil {
		return "", false, fmt.Errorf("reading README: %w", err)
	}
	content := string(data)
	updated, err := Update(ctx, content, r, jobs, progress)
	if err != nil {
		return "", false, err
	}
	if updated == content {
		return updated, false, nil
	}
	if write {
		if err := os.WriteFile(path, []byte(updated), 0644); err != nil { //nolint:gosec // README needs to be readable
			return "", false, fmt.Errorf("writing README: %w", err)
		}
	}
	return updated, true, nil
}
