package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/csvstore"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the column profile of CSV files",
		Long: `Classify the columns of each --file as numeric, date or categorical.
Profiles are cached and rebuilt when a file's columns change; --refresh forces a rebuild.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(opts.output); err != nil {
				return err
			}

			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			for _, path := range s.files {
				id := csvstore.FileID(path)
				if refresh {
					if err := s.profiles.InvalidateFileProfile(ctx, id); err != nil {
						return fmt.Errorf("failed to invalidate profile of %s: %w", path, err)
					}
				}
				p, err := s.profiles.GetOrBuildFileProfile(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to profile %s: %w", path, err)
				}
				if p == nil {
					return fmt.Errorf("no profile available for %s", path)
				}
				if err := writeProfile(cmd.OutOrStdout(), opts.output, path, p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild cached profiles")
	return cmd
}
