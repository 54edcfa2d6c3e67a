package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/injector"
	"github.com/lk2023060901/ai-notebook-backend/internal/template/biz"
	"github.com/spf13/cobra"
)

func templateCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage the question template library",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved templates",
			Args:  cobra.NoArgs,
			RunE: withTemplates(func(ctx context.Context, uc *biz.TemplateUseCase, cmd *cobra.Command, _ []string) error {
				entries := uc.List()
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "模板库为空")
					return nil
				}
				for i, e := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n    方法: %s\n", i, e.QuestionTemplate, e.AnswerMethod)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "summarize <paragraph>",
			Short: "Extract the main points of a paragraph",
			Args:  cobra.MinimumNArgs(1),
			RunE: withTemplates(func(ctx context.Context, uc *biz.TemplateUseCase, cmd *cobra.Command, args []string) error {
				summary, err := uc.Summarize(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				for i, p := range summary.MainPoints {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, p)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "extract <question> <answer>",
			Short: "Extract a template and answer method from a question and answer",
			Args:  cobra.ExactArgs(2),
			RunE: withTemplates(func(ctx context.Context, uc *biz.TemplateUseCase, cmd *cobra.Command, args []string) error {
				entry, added, err := uc.ExtractAndSave(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				status := "已保存"
				if !added {
					status = "已存在，未重复保存"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "模板: %s\n方法: %s\n(%s)\n", entry.QuestionTemplate, entry.AnswerMethod, status)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rewrite <method-index> <question> <answer>",
			Short: "Rewrite an answer with a saved answer method",
			Args:  cobra.ExactArgs(3),
			RunE: withTemplates(func(ctx context.Context, uc *biz.TemplateUseCase, cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid method index %q", args[0])
				}
				rewritten, err := uc.Rewrite(ctx, args[1], args[2], index)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rewritten)
				return nil
			}),
		},
	)

	return cmd
}

type templateRunFunc func(ctx context.Context, uc *biz.TemplateUseCase, cmd *cobra.Command, args []string) error

func withTemplates(fn templateRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		config, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		uc, cleanup, err := injector.InitializeTemplates(config, log)
		if err != nil {
			return err
		}
		defer cleanup()

		return fn(cmd.Context(), uc, cmd, args)
	}
}
