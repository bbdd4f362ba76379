package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/csvstore"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var intent string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question about one or more CSV files",
		Long: `Answer a question about the given files. With one --file the question is
scoped to that file; with several it is answered across all of them and merged.

Examples:
  tabq ask -f roaming.csv "how many rows"
  tabq ask -f roaming.csv "compare charge vs usage by partner"
  tabq ask -f roaming.csv --intent columns "what is in this file"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(opts.output); err != nil {
				return err
			}

			q := models.Question{Text: strings.Join(args, " ")}
			if intent != "" {
				in, ok := models.ParseIntent(intent)
				if !ok {
					return fmt.Errorf("unknown intent %q (want one of %s)", intent, strings.Join(models.Intents(), ", "))
				}
				q.ForcedIntent = in
			}

			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if len(s.files) == 1 {
				q.Scope.FileID = csvstore.FileID(s.files[0])
			} else {
				q.Scope.ProjectID = csvstore.ProjectID
			}

			res, err := s.engine.Ask(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("failed to answer question: %w", err)
			}
			return writeAnswer(cmd.OutOrStdout(), opts.output, res)
		},
	}

	cmd.Flags().StringVar(&intent, "intent", "", "skip classification and force an intent ("+strings.Join(models.Intents(), ", ")+")")
	return cmd
}
