package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"notepane/internal/app"
	"notepane/internal/common"
	"notepane/internal/config"
	"notepane/internal/listpane"
	"notepane/internal/log"
	"notepane/internal/sched"
	"notepane/internal/ui"
	"notepane/internal/vault"
	"notepane/internal/watcher"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// A side panel spends most of its time waiting on the terminal and
	// fsnotify; two OS threads cover the render and dispatch work. If
	// the user explicitly sets GOMAXPROCS, respect that.
	if os.Getenv("GOMAXPROCS") == "" {
		maxProcs := 2
		if n := runtime.NumCPU(); n < maxProcs {
			maxProcs = n
		}
		runtime.GOMAXPROCS(maxProcs)
	}

	// The index of even a large vault stays well under this; trigger the
	// GC early and keep RSS low when several panes run side by side.
	debug.SetMemoryLimit(64 * 1024 * 1024)
}

func main() {
	rootCmd := buildRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "notepane",
		Short: "A terminal side panel for your Markdown note vault",
		Long: `notepane is a keyboard-first terminal file explorer for Markdown
note vaults. It shows the vault as a virtualized, searchable note list
with pinning, grouping, tag and property filters, and a live preview —
designed to sit in a split next to your editor.`,
		RunE:          runApp,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"notepane %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s\n",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	))

	rootCmd.AddCommand(buildVersionCmd())
	rootCmd.AddCommand(buildCompletionCmd())

	rootCmd.Flags().StringP("vault", "v", "", "Path to the note vault (overrides config)")

	return rootCmd
}

// buildVersionCmd creates the `notepane version` subcommand supporting --json.
func buildVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Printf("notepane %s\n", version)
			fmt.Printf("  commit:  %s\n", commit)
			fmt.Printf("  built:   %s\n", date)
			fmt.Printf("  go:      %s\n", runtime.Version())
			fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}

// buildCompletionCmd creates the `notepane completion` subcommand.
func buildCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for notepane.

Examples:
  # Bash (add to ~/.bashrc)
  notepane completion bash > /etc/bash_completion.d/notepane

  # Zsh (add to ~/.zshrc before compinit)
  notepane completion zsh > "${fpath[1]}/_notepane"

  # Fish
  notepane completion fish > ~/.config/fish/completions/notepane.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}

	return cmd
}

// editorOpener spawns the configured editor for explicit window opens.
// In-pane opens need no host action — the preview viewport shows the
// note — so only the window context reaches the OS.
type editorOpener struct {
	editor string
	root   string
}

func (o *editorOpener) OpenFile(f *vault.FileRef, opts vault.OpenOptions) error {
	if opts.Context != vault.OpenWindow {
		return nil
	}
	if o.editor == "" {
		return fmt.Errorf("no editor configured (set editor in config or $EDITOR)")
	}
	cmd := exec.Command(o.editor, filepath.Join(o.root, filepath.FromSlash(f.Path)))
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn editor: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagVault, _ := cmd.Flags().GetString("vault"); flagVault != "" {
		cfg.Vault = flagVault
	}
	if cfg.Vault == "" {
		cfg.Vault = "."
	}
	root, err := filepath.Abs(cfg.Vault)
	if err != nil {
		return fmt.Errorf("resolving vault path: %w", err)
	}

	log.Setup(config.StateDirectory(), cfg.LogLevel)
	log.WithField("vault", root).Infof("starting notepane %s", version)

	index, err := vault.NewIndex(root, cfg.IgnorePatterns)
	if err != nil {
		return fmt.Errorf("opening vault: %w", err)
	}

	// A 2-second TTL cache deduplicates list queries within a refresh
	// cycle; every write path invalidates it.
	svc := vault.NewCachedService(index, 2*time.Second)

	editor := cfg.Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	opener := &editorOpener{editor: editor, root: root}

	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))
	pane := listpane.NewController(cfg, config.DefaultKeyBindings(), styles, svc, opener, sched.NewTimers())

	model := app.New(cfg, styles, pane)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Debounce timers fire off the event loop; they hand results back
	// through Send.
	pane.SetNotify(p.Send)

	// Filesystem watcher: coalesced note changes become refreshes.
	if watchCh, stop, watchErr := watcher.Watch(root, 500*time.Millisecond); watchErr == nil {
		defer stop()
		go func() {
			for range watchCh {
				p.Send(common.RefreshMsg{})
			}
		}()
	} else {
		log.Warnf("vault watcher unavailable: %v", watchErr)
	}

	_, err = p.Run()
	return err
}
