package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/HartBrook/shrink/internal/batch"
	"github.com/HartBrook/shrink/internal/config"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/github"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/spf13/cobra"
)

const stdinName = "-"

// inputOptions selects where inputs come from.
type inputOptions struct {
	kind    string
	repo    string
	ref     string
	path    string
	maxSize string
}

func addInputFlags(cmd *cobra.Command, o *inputOptions) {
	cmd.Flags().StringVarP(&o.kind, "kind", "k", "", "Content kind (html, css, json, js, jsx); detected from the file name when omitted")
	cmd.Flags().StringVar(&o.repo, "repo", "", "GitHub repository to read --path from (owner/repo)")
	cmd.Flags().StringVar(&o.ref, "ref", "", "Branch, tag or commit for --path (default branch when empty)")
	cmd.Flags().StringVar(&o.path, "path", "", "File in --repo to read, or a GitHub blob URL")
	cmd.Flags().StringVar(&o.maxSize, "max-size", "", "Size ceiling per input, e.g. 512KiB (default from config)")
}

// inputSource reads inputs for one command invocation.
type inputSource struct {
	opts  *inputOptions
	cfg   *config.Config
	limit int64
	stdin io.Reader

	// newClient is replaced in tests.
	newClient func() (*github.Client, error)
}

func newInputSource(cmd *cobra.Command, opts *inputOptions, cfg *config.Config, limit int64) *inputSource {
	return &inputSource{
		opts:      opts,
		cfg:       cfg,
		limit:     limit,
		stdin:     cmd.InOrStdin(),
		newClient: github.NewClientFromAuthChain,
	}
}

// forced returns the kind given with --kind, or Unknown.
func (s *inputSource) forced() (kind.Kind, error) {
	if s.opts.kind == "" {
		return kind.Unknown, nil
	}
	return kind.Parse(s.opts.kind)
}

// collect resolves args and the GitHub flags into inputs. Failures tied to
// one input are recorded on that input so the rest still run.
func (s *inputSource) collect(ctx context.Context, args []string) ([]batch.Input, error) {
	forced, err := s.forced()
	if err != nil {
		return nil, err
	}

	var inputs []batch.Input
	remote := s.opts.path != "" || s.opts.repo != ""
	if remote {
		fetched, err := s.fetch(ctx, forced)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, fetched...)
	}

	if len(args) == 0 && !remote {
		args = []string{stdinName}
	}

	for _, arg := range args {
		if arg == stdinName {
			if forced == kind.Unknown {
				return nil, errors.New(errors.ErrUnknownKind,
					"cannot detect the kind of standard input",
					"Pass --kind when reading from standard input")
			}
			inputs = append(inputs, s.readStdin(forced))
			continue
		}

		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			inputs = append(inputs, s.readFile(arg, fi.Size(), forced))
			continue
		}

		found, err := s.walk(arg, forced)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no supported files found in %s", arg)
		}
		inputs = append(inputs, found...)
	}
	return inputs, nil
}

func (s *inputSource) readStdin(k kind.Kind) batch.Input {
	in := batch.Input{Name: stdinName, Kind: k}
	data, err := io.ReadAll(io.LimitReader(s.stdin, s.limit+1))
	if err != nil {
		in.Err = fmt.Errorf("reading standard input: %w", err)
		return in
	}
	if int64(len(data)) > s.limit {
		in.Err = errors.OversizedInput(int64(len(data)), s.limit)
		return in
	}
	in.Text = string(data)
	return in
}

// readFile reads one file. The size is checked against the ceiling before
// anything is read.
func (s *inputSource) readFile(path string, size int64, forced kind.Kind) batch.Input {
	in := batch.Input{Name: path, Kind: forced}
	if in.Kind == kind.Unknown {
		k, err := kind.FromPath(path)
		if err != nil {
			in.Err = err
			return in
		}
		in.Kind = k
	}
	if size > s.limit {
		in.Err = errors.OversizedInput(size, s.limit)
		return in
	}
	data, err := os.ReadFile(path)
	if err != nil {
		in.Err = err
		return in
	}
	in.Text = string(data)
	return in
}

// walk collects the supported files under dir. Hidden directories and
// files that are already minified are skipped.
func (s *inputSource) walk(dir string, forced kind.Kind) ([]batch.Input, error) {
	var inputs []batch.Input
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !wanted(path, forced) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		inputs = append(inputs, s.readFile(path, fi.Size(), forced))
		return nil
	})
	return inputs, err
}

// fetch reads --path from GitHub. A path ending in "/" names a directory,
// whose supported files are read; subdirectories are not followed.
func (s *inputSource) fetch(ctx context.Context, forced kind.Kind) ([]batch.Input, error) {
	repo, path := s.opts.repo, s.opts.path
	if strings.Contains(path, "/blob/") {
		repo, path = path, ""
	}
	if repo == "" {
		repo = s.cfg.GitHub.Repo
	}
	ref := s.opts.ref
	if ref == "" {
		ref = s.cfg.GitHub.Ref
	}

	fileRef, err := config.ParseFileRef(repo, path, ref)
	if err != nil {
		return nil, err
	}

	client, err := s.newClient()
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, "/") {
		in, err := s.fetchFile(ctx, client, fileRef, forced)
		if err != nil {
			return nil, err
		}
		return []batch.Input{in}, nil
	}

	entries, err := client.ListDirectory(ctx, fileRef.Owner, fileRef.Repo, fileRef.Path, fileRef.Ref)
	if err != nil {
		return nil, err
	}
	var inputs []batch.Input
	for _, entry := range entries {
		if entry.Type != "file" || !wanted(entry.Path, forced) {
			continue
		}
		entryRef := fileRef
		entryRef.Path = entry.Path
		in, err := s.fetchFile(ctx, client, entryRef, forced)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no supported files found in %s", fileRef)
	}
	return inputs, nil
}

func (s *inputSource) fetchFile(ctx context.Context, client *github.Client, ref config.FileRef, forced kind.Kind) (batch.Input, error) {
	in := batch.Input{Name: ref.String(), Kind: forced}
	if in.Kind == kind.Unknown {
		k, err := kind.FromPath(ref.Path)
		if err != nil {
			return batch.Input{}, err
		}
		in.Kind = k
	}

	result, err := client.FetchFile(ctx, ref, s.limit)
	if err != nil {
		in.Err = err
		return in, nil
	}
	in.Text = result.Content
	return in, nil
}

// wanted reports whether a file found in a directory should be processed:
// it must match the forced kind, or have a detectable one, and must not be
// minified output already.
func wanted(path string, forced kind.Kind) bool {
	if kind.MinifiedName(path) == path {
		return false
	}
	if forced != kind.Unknown {
		return forced.Accepts(path)
	}
	_, err := kind.FromPath(path)
	return err == nil
}
