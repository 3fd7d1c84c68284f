// driftbox is a command-line client for a driftbox file-storage server.
//
// Sub-commands:
//
//	driftbox login                     Log in and save the session
//	driftbox register                  Create an account and log in
//	driftbox logout                    Log out and drop the saved session
//	driftbox whoami                    Show the logged-in user
//	driftbox ls [-folder id]           List a folder
//	driftbox mkdir [-folder id] <name> Create a folder
//	driftbox upload [-folder id] <file>
//	driftbox download [-o dir] <file-id>
//	driftbox replace <file-id> <file>
//	driftbox rm [-f] (-file id | -folder id)
//	driftbox browse                    Interactive fuzzy browser
//	driftbox mirror [-folder id] <dir> Watch a directory and upload changes
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/driftbox/driftbox/internal/config"
	"github.com/driftbox/driftbox/internal/mirror"
	"github.com/driftbox/driftbox/internal/ui"
	"github.com/driftbox/driftbox/pkg/browse"
	"github.com/driftbox/driftbox/pkg/client"
	"github.com/driftbox/driftbox/pkg/logging"
	"github.com/driftbox/driftbox/pkg/models"
)

func main() {
	// .env for local development; system env wins when both are set.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if len(os.Args) < 2 {
		printHelp(cfg)
		return
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "login":
		cmdLogin(cfg, args)
	case "register":
		cmdRegister(cfg, args)
	case "logout":
		cmdLogout(cfg, args)
	case "whoami":
		cmdWhoami(cfg, args)
	case "ls":
		cmdLs(cfg, args)
	case "mkdir":
		cmdMkdir(cfg, args)
	case "upload":
		cmdUpload(cfg, args)
	case "download":
		cmdDownload(cfg, args)
	case "replace":
		cmdReplace(cfg, args)
	case "rm":
		cmdRm(cfg, args)
	case "browse":
		cmdBrowse(cfg, args)
	case "mirror":
		cmdMirror(cfg, args)
	case "-h", "--help", "help":
		printHelp(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printHelp(cfg)
		os.Exit(1)
	}
}

func printHelp(cfg *config.Config) {
	fmt.Printf(`driftbox - command-line client for a driftbox file-storage server

Usage: driftbox <command> [flags] [args]

Commands:
  login                      Log in and save the session
  register                   Create an account and log in
  logout                     Log out and drop the saved session
  whoami                     Show the logged-in user
  ls [-folder id]            List a folder (root by default)
  mkdir [-folder id] <name>  Create a folder
  upload [-folder id] <file> Upload a local file
  download [-o dir] <id>     Download a file by id
  replace <id> <file>        Replace a file's content, keeping its id
  rm [-f] -file id           Delete a file
  rm [-f] -folder id         Delete a folder (recursive on the server)
  browse                     Interactive fuzzy browser
  mirror [-folder id] <dir>  Watch a directory and upload changes

Configuration:
  Config file: %s
  Server URL:  %s (override with DRIFTBOX_SERVER or server_url in config)
`, config.Path(), cfg.ServerURL)
}

// crumbPlaceholder names breadcrumb entries for folders addressed by raw
// id from a -folder flag. The API has no lookup-by-id endpoint, so the
// display name is unknown in one-shot commands.
const crumbPlaceholder = "(folder)"

func newClient(cfg *config.Config) *client.Client {
	c, err := client.New(client.Config{BaseURL: cfg.ServerURL})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return c
}

// restoreOrExit resumes the saved session or tells the user to log in.
func restoreOrExit(ctx context.Context, b *browse.Browser) {
	if !b.Restore(ctx) {
		fmt.Fprintf(os.Stderr, "Not logged in. Run 'driftbox login' first.\n")
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func promptLine(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) string {
	fmt.Print(label)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fatal(fmt.Errorf("reading password: %w", err))
	}
	return string(passwordBytes)
}

func cmdLogin(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email (prompted when omitted)")
	fs.Parse(args)

	if *email == "" {
		*email = promptLine("Email: ")
	}
	password := promptPassword("Password: ")

	b := browse.New(newClient(cfg))
	if err := b.Login(context.Background(), *email, password); err != nil {
		fatal(err)
	}

	s := b.Session()
	fmt.Printf("Logged in as %s <%s>. Session saved to %s\n", s.Name, s.Email, client.SessionFilePath())
}

func cmdRegister(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Display name (prompted when omitted)")
	email := fs.String("email", "", "Account email (prompted when omitted)")
	fs.Parse(args)

	if *name == "" {
		*name = promptLine("Name: ")
	}
	if *email == "" {
		*email = promptLine("Email: ")
	}
	password := promptPassword("Password: ")

	b := browse.New(newClient(cfg))
	if err := b.Register(context.Background(), *name, *email, password); err != nil {
		fatal(err)
	}

	s := b.Session()
	fmt.Printf("Registered and logged in as %s <%s>.\n", s.Name, s.Email)
}

func cmdLogout(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	fs.Parse(args)

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	if !b.Restore(ctx) {
		fmt.Println("Not logged in.")
		return
	}
	if err := b.Logout(ctx); err != nil {
		// Local state is already cleared; the server call failing is not fatal.
		fmt.Printf("Logged out locally (server logout failed: %v).\n", err)
		return
	}
	fmt.Println("Logged out.")
}

func cmdWhoami(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	fs.Parse(args)

	b := browse.New(newClient(cfg))
	restoreOrExit(context.Background(), b)

	s := b.Session()
	fmt.Printf("%s <%s> (id %s)\n", s.Name, s.Email, s.ID)
}

func cmdLs(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	folderID := fs.String("folder", "", "Folder id (root when omitted)")
	fs.Parse(args)

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	restoreOrExit(ctx, b)

	if err := b.Navigate(ctx, *folderID, crumbPlaceholder); err != nil {
		fatal(err)
	}
	printItems(b.Items())
}

func printItems(items []models.Item) {
	if len(items) == 0 {
		fmt.Println("(empty)")
		return
	}
	fmt.Printf("%-6s  %-36s  %10s  %s\n", "TYPE", "ID", "SIZE", "NAME")
	for _, item := range items {
		size := ""
		if !item.IsFolder() {
			size = ui.FormatSize(item.Size)
		}
		fmt.Printf("%-6s  %-36s  %10s  %s\n", item.Type, item.ID, size, item.Name)
	}
}

func cmdMkdir(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("mkdir", flag.ExitOnError)
	folderID := fs.String("folder", "", "Parent folder id (root when omitted)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: driftbox mkdir [-folder id] <name>\n")
		os.Exit(1)
	}

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	restoreOrExit(ctx, b)

	if err := b.Navigate(ctx, *folderID, crumbPlaceholder); err != nil {
		fatal(err)
	}
	if err := b.CreateFolder(ctx, fs.Arg(0)); err != nil {
		fatal(err)
	}
	fmt.Printf("Created folder %q.\n", fs.Arg(0))
}

func cmdUpload(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	folderID := fs.String("folder", "", "Target folder id (root when omitted)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: driftbox upload [-folder id] <file>\n")
		os.Exit(1)
	}

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	restoreOrExit(ctx, b)

	if err := b.Navigate(ctx, *folderID, crumbPlaceholder); err != nil {
		fatal(err)
	}
	if err := b.UploadFile(ctx, fs.Arg(0)); err != nil {
		fatal(err)
	}
	fmt.Printf("Uploaded %s.\n", fs.Arg(0))
}

func cmdDownload(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	outDir := fs.String("o", cfg.DownloadDir, "Output directory")
	name := fs.String("name", "", "Fallback filename when the server sends none")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: driftbox download [-o dir] <file-id>\n")
		os.Exit(1)
	}

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	restoreOrExit(ctx, b)

	dest, err := b.Download(ctx, fs.Arg(0), *name, *outDir)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Saved to %s\n", dest)
}

func cmdReplace(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("replace", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Usage: driftbox replace <file-id> <file>\n")
		os.Exit(1)
	}

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	restoreOrExit(ctx, b)

	if err := b.Replace(ctx, fs.Arg(0), fs.Arg(1)); err != nil {
		fatal(err)
	}
	fmt.Printf("Replaced content of %s.\n", fs.Arg(0))
}

func cmdRm(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	fileID := fs.String("file", "", "File id to delete")
	folderID := fs.String("folder", "", "Folder id to delete (recursive)")
	force := fs.Bool("f", false, "Skip the confirmation prompt")
	fs.Parse(args)

	if (*fileID == "") == (*folderID == "") {
		fmt.Fprintf(os.Stderr, "Usage: driftbox rm [-f] (-file id | -folder id)\n")
		os.Exit(1)
	}

	item := models.Item{ID: *fileID, Type: models.TypeFile}
	what := "file " + *fileID
	if *folderID != "" {
		item = models.Item{ID: *folderID, Type: models.TypeFolder}
		what = "folder " + *folderID + " and everything inside it"
	}

	if !*force && !confirm(fmt.Sprintf("Delete %s?", what)) {
		fmt.Println("Aborted.")
		return
	}

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	restoreOrExit(ctx, b)

	if err := b.Delete(ctx, item); err != nil {
		fatal(err)
	}
	fmt.Printf("Deleted %s.\n", what)
}

func confirm(question string) bool {
	answer := promptLine(question + " [y/N] ")
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func cmdBrowse(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	outDir := fs.String("o", cfg.DownloadDir, "Download directory")
	fs.Parse(args)

	b := browse.New(newClient(cfg))
	ctx := context.Background()
	restoreOrExit(ctx, b)

	if err := b.Refresh(ctx); err != nil {
		fatal(err)
	}

	for {
		entry, err := ui.PickEntry(b.Path(), b.Items())
		if err != nil {
			fatal(err)
		}
		if entry == nil {
			return // cancelled
		}

		switch {
		case entry.Up:
			path := b.Path()
			parent := path[len(path)-2]
			if err := b.Navigate(ctx, parent.ID, parent.Name); err != nil {
				fatal(err)
			}

		case entry.Item.IsFolder():
			if err := b.Navigate(ctx, entry.Item.ID, entry.Item.Name); err != nil {
				fatal(err)
			}

		default:
			dest, err := b.Download(ctx, entry.Item.ID, entry.Item.Name, *outDir)
			if err != nil {
				fatal(err)
			}
			fmt.Printf("Saved to %s\n", dest)
		}

		if b.Session() == nil {
			fmt.Fprintf(os.Stderr, "Session expired. Run 'driftbox login' again.\n")
			os.Exit(1)
		}
	}
}

func cmdMirror(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("mirror", flag.ExitOnError)
	folderID := fs.String("folder", "", "Remote folder id (root when omitted)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: driftbox mirror [-folder id] <dir>\n")
		os.Exit(1)
	}

	api := newClient(cfg)
	b := browse.New(api)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	restoreOrExit(ctx, b)

	m := mirror.New(api, mirror.Config{
		LocalDir: fs.Arg(0),
		FolderID: *folderID,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Mirroring %s. Press Ctrl+C to stop.\n", fs.Arg(0))
	if err := m.Run(ctx); err != nil && err != context.Canceled {
		fatal(err)
	}
	fmt.Println("Stopped.")
}
