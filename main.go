package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ctx400/pv/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create":
		runCreate(os.Args[2:])
	case "store":
		runStore(os.Args[2:])
	case "read":
		runRead(os.Args[2:])
	case "delete":
		runDelete(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "passwd":
		runPasswd(os.Args[2:])
	case "merge":
		runMerge(os.Args[2:])
	case "keyring":
		runKeyring(os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runCreate(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	path := pathArg(fs.Args(), 0)
	cmd.Create(path, *useBolt)
}

func runStore(args []string) {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	name := nameArg(fs.Args(), "store")
	path := pathArg(fs.Args(), 1)
	cmd.Store(path, name, *useBolt)
}

func runRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	name := nameArg(fs.Args(), "read")
	path := pathArg(fs.Args(), 1)
	cmd.Read(path, name, *useBolt)
}

func runDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	name := nameArg(fs.Args(), "delete")
	path := pathArg(fs.Args(), 1)
	cmd.Delete(path, name, *useBolt)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	path := pathArg(fs.Args(), 0)
	cmd.List(path, *useBolt)
}

func runPasswd(args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	path := pathArg(fs.Args(), 0)
	cmd.Passwd(path, *useBolt)
}

func runMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	strategy := fs.String("strategy", "skip", "Conflict strategy: skip, theirs, or abort")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if len(fs.Args()) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: pv merge [--strategy skip|theirs|abort] <dest> <source>")
		os.Exit(1)
	}
	cmd.Merge(fs.Args()[0], fs.Args()[1], *strategy, *useBolt)
}

func runKeyring(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pv keyring <save|rm|status> [path]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("keyring", flag.ExitOnError)
	useBolt := fs.Bool("bolt", false, "Use the bbolt backend instead of the JSON file format")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	path := pathArg(fs.Args(), 0)

	switch args[0] {
	case "save":
		cmd.KeyringSave(path, *useBolt)
	case "rm":
		cmd.KeyringDelete(path, *useBolt)
	case "status":
		cmd.KeyringStatus(path, *useBolt)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(1)
	}
}

// nameArg extracts the secret name argument or exits with usage
func nameArg(args []string, command string) string {
	if len(args) < 1 || args[0] == "" {
		fmt.Fprintf(os.Stderr, "Usage: pv %s <name> [path]\n", command)
		os.Exit(1)
	}
	return args[0]
}

// pathArg extracts the vault path at position i, falling back to PV_PATH
func pathArg(args []string, i int) string {
	arg := ""
	if len(args) > i {
		arg = args[i]
	}

	path, err := cmd.ResolvePath(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return path
}

func printUsage() {
	fmt.Println("pv - Password-protected vault for name/value secrets")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pv <command> [flags] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create      Create a new empty vault")
	fmt.Println("  store       Store a secret in the vault")
	fmt.Println("  read        Read a secret from the vault")
	fmt.Println("  delete      Delete a secret from the vault")
	fmt.Println("  list        List all secret names in the vault")
	fmt.Println("  passwd      Rewrite the vault under a new password")
	fmt.Println("  merge       Merge another vault's secrets into a vault")
	fmt.Println("  keyring     Save, remove, or check the password in the OS keyring")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("The vault path may be given as the final argument or via PV_PATH.")
	fmt.Println("The master password may be supplied via PV_PASSWORD, the OS keyring")
	fmt.Println("(see 'pv keyring'), or an interactive prompt.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pv create pv.json               # Create a new vault")
	fmt.Println("  pv store api-key pv.json        # Store a secret (prompts for value)")
	fmt.Println("  pv read api-key pv.json         # Print a secret")
	fmt.Println("  pv list pv.json                 # List secret names")
	fmt.Println()
	fmt.Println("Use 'pv help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "create":
		fmt.Println("pv create [--bolt] <path>")
		fmt.Println()
		fmt.Println("Creates a new empty vault at the given path.")
		fmt.Println("No password is set at creation: each secret operation supplies")
		fmt.Println("its own password, and nothing is stored that could verify one.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --bolt    Use the bbolt backend instead of the JSON file format")
	case "store":
		fmt.Println("pv store [--bolt] <name> [path]")
		fmt.Println()
		fmt.Println("Stores a secret under the given name, prompting for the secret")
		fmt.Println("value and the master password. An existing secret with the same")
		fmt.Println("name is silently overwritten.")
	case "read":
		fmt.Println("pv read [--bolt] <name> [path]")
		fmt.Println()
		fmt.Println("Decrypts the named secret and prints it to stdout.")
		fmt.Println("Fails if the name is absent, the password is wrong, or the")
		fmt.Println("vault has been tampered with - the latter two are deliberately")
		fmt.Println("indistinguishable.")
	case "delete":
		fmt.Println("pv delete [--bolt] <name> [path]")
		fmt.Println()
		fmt.Println("Removes the named secret. No password is required.")
	case "list":
		fmt.Println("pv list [--bolt] [path]")
		fmt.Println()
		fmt.Println("Prints the names of all secrets, one per line.")
		fmt.Println("No password is required; values are not decrypted.")
	case "passwd":
		fmt.Println("pv passwd [--bolt] [path]")
		fmt.Println()
		fmt.Println("Rewrites the vault under a new password and a fresh salt.")
		fmt.Println("Every secret must decrypt under the current password; if any")
		fmt.Println("was stored under a different password the rotation fails and")
		fmt.Println("the vault is left unchanged.")
	case "merge":
		fmt.Println("pv merge [--bolt] [--strategy skip|theirs|abort] <dest> <source>")
		fmt.Println()
		fmt.Println("Merges the source vault's secrets into the destination vault.")
		fmt.Println("Both vaults must open under the same master password.")
		fmt.Println()
		fmt.Println("Strategies for names present in both vaults with different values:")
		fmt.Println("  skip      Keep the destination's value (default)")
		fmt.Println("  theirs    Take the source's value")
		fmt.Println("  abort     Fail on the first conflict")
		fmt.Println()
		fmt.Println("Conflicting text secrets are shown as a unified diff.")
	case "keyring":
		fmt.Println("pv keyring <save|rm|status> [--bolt] [path]")
		fmt.Println()
		fmt.Println("Manages the vault's master password in the OS keyring.")
		fmt.Println("  save      Prompt for the password and store it")
		fmt.Println("  rm        Remove the stored password")
		fmt.Println("  status    Report whether a password is stored")
		fmt.Println()
		fmt.Println("A saved password is used automatically by store, read, passwd,")
		fmt.Println("and merge, after PV_PASSWORD but before prompting.")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
