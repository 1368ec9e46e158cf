package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/eliseohh/confessbot/internal/comments"
	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Inspect stored comment threads",
}

var commentsShowCmd = &cobra.Command{
	Use:   "show <ordinal>",
	Short: "Print the comments of one confession",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ordinal, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || ordinal == 0 {
			return fmt.Errorf("invalid ordinal %q", args[0])
		}
		return withStore(cmd, func(s *comments.Store) error {
			return printThread(cmd.OutOrStdout(), ordinal, s.Read(ordinal))
		})
	},
}

var commentsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every thread as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		return withStore(cmd, func(s *comments.Store) error {
			if out == "" {
				return s.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := s.Export(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			st := s.Stats()
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %s comments in %s threads to %s\n",
				humanize.Comma(int64(st.Comments)), humanize.Comma(int64(st.Threads)), out)
			return nil
		})
	},
}

func init() {
	commentsExportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	commentsCmd.AddCommand(commentsShowCmd, commentsExportCmd)
}

func withStore(cmd *cobra.Command, fn func(*comments.Store) error) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func printThread(w io.Writer, ordinal uint64, thread []string) error {
	if len(thread) == 0 {
		_, err := fmt.Fprintf(w, "#%d: no comments\n", ordinal)
		return err
	}
	if _, err := fmt.Fprintf(w, "#%d: %d comments\n", ordinal, len(thread)); err != nil {
		return err
	}
	for i, c := range thread {
		if _, err := fmt.Fprintf(w, "%3d. %s\n", i+1, c); err != nil {
			return err
		}
	}
	return nil
}
