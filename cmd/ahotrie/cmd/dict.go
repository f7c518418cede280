package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/adapters/bbolt"
	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/domain/dictionary"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage stored dictionaries",
	Long: "Dictionaries saved here live in the project's bbolt store\n" +
		"(.ahotrie/ahotrie.db) and are used with --dict NAME.",
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List builtin and stored dictionaries",
	Args:  cobra.NoArgs,
	RunE:  runDictList,
}

var (
	dictShowStats bool
	dictShowJSON  bool
)

var dictShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a dictionary as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictShow,
}

var (
	dictAddFlags       matchFlags
	dictAddDescription string
	dictAddWith        []string
)

var dictAddCmd = &cobra.Command{
	Use:   "add NAME [keyword...]",
	Short: "Create a stored dictionary or add keywords to it",
	Example: "  ahotrie dict add pronouns he she his hers -i\n" +
		"  ahotrie dict add pronouns --with he=they",
	Args: cobra.MinimumNArgs(1),
	RunE: runDictAdd,
}

var dictRemoveCmd = &cobra.Command{
	Use:   "remove NAME [keyword...]",
	Short: "Remove keywords, or the whole dictionary when none are named",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictRemove,
}

var dictImportCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Save YAML dictionary files (or directories of them) to the store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictImport,
}

func init() {
	dictShowCmd.Flags().BoolVar(&dictShowStats, "stats", false, "Build the trie and print its size instead")
	dictShowCmd.Flags().BoolVar(&dictShowJSON, "json", false, "Output as JSON")

	f := dictAddCmd.Flags()
	dictAddFlags.registerOptions(f)
	f.StringVar(&dictAddDescription, "description", "", "Dictionary description")
	f.StringArrayVar(&dictAddWith, "with", nil, "keyword=replacement (repeatable)")

	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictShowCmd)
	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictRemoveCmd)
	dictCmd.AddCommand(dictImportCmd)
}

// openStore opens the bbolt store, creating its directory.
func openStore() (*bbolt.Store, error) {
	path := dbPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	store, err := bbolt.NewStore(path)
	if err != nil {
		return nil, storeError(projectRoot(), err)
	}
	return store, nil
}

// withStore runs fn against the store, opening it only for the call.
func withStore(fn func(*bbolt.Store) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// storeExists reports whether the store file has been created yet. Read-only
// commands skip the store rather than create an empty one.
func storeExists() bool {
	_, err := os.Stat(dbPath())
	return err == nil
}

// findDictionary looks name up in the store, then among the builtins.
func findDictionary(name string) (*dictionary.Dictionary, string, error) {
	if storeExists() {
		var d *dictionary.Dictionary
		err := withStore(func(s *bbolt.Store) error {
			var err error
			d, err = s.LoadDictionary(name)
			return err
		})
		if err != nil {
			return nil, "", err
		}
		if d != nil {
			return d, "stored", nil
		}
	}

	builtins, err := app.Builtins()
	if err != nil {
		return nil, "", err
	}
	if i := slices.IndexFunc(builtins, func(d *dictionary.Dictionary) bool { return d.Name == name }); i >= 0 {
		return builtins[i], "builtin", nil
	}
	return nil, "", fmt.Errorf("no dictionary named %q", name)
}

func runDictList(cmd *cobra.Command, args []string) error {
	builtins, err := app.Builtins()
	if err != nil {
		return err
	}
	var entries []dictEntry
	for _, d := range builtins {
		entries = append(entries, dictEntry{Name: d.Name, Origin: "builtin", Keywords: len(d.Keywords), Description: d.Description})
	}

	if storeExists() {
		err := withStore(func(s *bbolt.Store) error {
			names, err := s.ListDictionaries()
			if err != nil {
				return err
			}
			for _, name := range names {
				d, err := s.LoadDictionary(name)
				if err != nil {
					return fmt.Errorf("load %s: %w", name, err)
				}
				if d == nil {
					continue
				}
				entries = append(entries, dictEntry{Name: d.Name, Origin: "stored", Keywords: len(d.Keywords), Description: d.Description})
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), formatDictList(entries, resolveColor(rootColor)))
	return nil
}

func runDictShow(cmd *cobra.Command, args []string) error {
	d, _, err := findDictionary(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if dictShowStats {
		stats := app.NewEngine().Load(d)
		fmt.Fprint(out, formatStats(d, stats, resolveColor(rootColor)))
		return nil
	}
	if dictShowJSON {
		return writeJSON(out, d)
	}
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runDictAdd(cmd *cobra.Command, args []string) error {
	name, keywords := args[0], args[1:]
	replacements, err := parseReplacements(dictAddWith)
	if err != nil {
		return err
	}

	return withStore(func(s *bbolt.Store) error {
		d, err := s.LoadDictionary(name)
		if err != nil {
			return err
		}
		created := d == nil
		if created {
			d = dictionary.New(name)
		}
		added := d.Add(keywords...)
		for k, v := range replacements {
			d.SetReplacement(k, v)
		}
		d.Options = d.Options.Merge(dictAddFlags.options())
		if dictAddDescription != "" {
			d.Description = dictAddDescription
		}
		if len(d.Keywords) == 0 {
			return fmt.Errorf("dictionary %q needs at least one keyword", name)
		}
		if err := s.SaveDictionary(d); err != nil {
			return err
		}

		verb := "updated"
		if created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "⚡ %s %s │ +%d keywords │ %d total\n", verb, name, added, len(d.Keywords))
		return nil
	})
}

func runDictRemove(cmd *cobra.Command, args []string) error {
	name, keywords := args[0], args[1:]
	if !storeExists() {
		return fmt.Errorf("no stored dictionary named %q", name)
	}

	return withStore(func(s *bbolt.Store) error {
		d, err := s.LoadDictionary(name)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("no stored dictionary named %q", name)
		}

		out := cmd.OutOrStdout()
		if len(keywords) == 0 {
			if err := s.DeleteDictionary(name); err != nil {
				return err
			}
			fmt.Fprintf(out, "⚡ deleted %s\n", name)
			return nil
		}

		removed := d.Remove(keywords...)
		if len(d.Keywords) == 0 {
			if err := s.DeleteDictionary(name); err != nil {
				return err
			}
			fmt.Fprintf(out, "⚡ deleted %s │ no keywords left\n", name)
			return nil
		}
		if err := s.SaveDictionary(d); err != nil {
			return err
		}
		fmt.Fprintf(out, "⚡ updated %s │ -%d keywords │ %d total\n", name, removed, len(d.Keywords))
		return nil
	})
}

func runDictImport(cmd *cobra.Command, args []string) error {
	var dicts []*dictionary.Dictionary
	for _, path := range args {
		loaded, err := app.LoadPath(path)
		if err != nil {
			return err
		}
		dicts = append(dicts, loaded...)
	}

	return withStore(func(s *bbolt.Store) error {
		var errs []error
		for _, d := range dicts {
			if err := s.SaveDictionary(d); err != nil {
				errs = append(errs, fmt.Errorf("save %s: %w", d.Name, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "⚡ imported %s │ %d keywords\n", d.Name, len(d.Keywords))
		}
		return errors.Join(errs...)
	})
}
