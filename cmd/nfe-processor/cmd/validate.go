package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/nfe"
)

var validateNoLog bool

var validateCmd = &cobra.Command{
	Use:   "validate [keys or files...]",
	Short: "Validate access keys or fiscal XML structure",
	Long: `Validate inputs. A 44-digit argument is checked as an access key;
anything else is treated as an XML file and checked for structural
validity (well-formed XML with a recognized document type).

Outcomes are appended to the validation log under the configured log
directory unless --no-log is set.

Examples:
  nfe-processor validate 43200714200166000187550010000000046550000046
  nfe-processor validate nota.xml notas/outra.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateNoLog, "no-log", false, "Do not record outcomes in the validation log")
}

func runValidate(cmd *cobra.Command, args []string) error {
	var logs logstore.Store
	if !validateNoLog {
		store, err := logstore.NewFileStore(cfg.LogDir)
		if err != nil {
			return err
		}
		logs = store
	}

	failed := 0
	for _, arg := range args {
		subject, err := validateOne(arg)
		if err != nil {
			failed++
			fmt.Printf("INVALID  %s: %v\n", arg, err)
		} else {
			fmt.Printf("OK       %s\n", arg)
		}

		if logs != nil {
			entry := logstore.NewEntry(subject, err == nil, "")
			if err != nil {
				entry.Message = err.Error()
			}
			if appendErr := logs.Append(logstore.CategoryValidation, entry); appendErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not write validation log: %v\n", appendErr)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs invalid", failed, len(args))
	}
	return nil
}

// validateOne returns the log subject and the validation outcome.
func validateOne(arg string) (string, error) {
	if len(arg) == 44 && !isXMLFile(arg) {
		if !model.ValidAccessKey(arg) {
			return arg, model.NewValidationError("accessKey", arg, "must be 44 numeric digits")
		}
		return arg, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return arg, err
	}
	doc, err := nfe.ParseNamed(arg, data)
	if err != nil {
		return arg, err
	}

	if key := doc.AccessKey(); key != "" && !model.ValidAccessKey(key) {
		return arg, model.NewValidationError("accessKey", key, "must be 44 numeric digits")
	}
	return arg, nil
}
