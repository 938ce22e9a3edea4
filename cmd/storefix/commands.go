package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
	billingServices "github.com/storefixhq/storefix/modules/billing/services"
	intakeServices "github.com/storefixhq/storefix/modules/intake/services"
	"github.com/storefixhq/storefix/modules/notifications/email"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	workflowServices "github.com/storefixhq/storefix/modules/workflow/services"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/outbox"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := env.app.Migrations().Run(ctx, env.pool); err != nil {
				return errors.Wrap(err, "run migrations")
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func jobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage job workflow",
	}

	var actor string
	cmd.PersistentFlags().StringVar(&actor, "actor", "cli", "who performs the action")

	var category, description string
	create := &cobra.Command{
		Use:   "create <submission-id>",
		Short: "Create a job from a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "parse submission id")
			}
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			created, err := application.Use[*workflowServices.JobService](env.app).
				CreateJob(ctx, workflowServices.CreateJobDTO{
					SubmissionID: id,
					Category:     category,
					Description:  description,
					Actor:        actor,
				})
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", created.ID(), created.Reference())
			return nil
		},
	}
	create.Flags().StringVar(&category, "category", "", "job category")
	create.Flags().StringVar(&description, "description", "", "job description; defaults to the submission message")

	var amountMinor int64
	quote := &cobra.Command{
		Use:   "quote <job-id>",
		Short: "Send a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "parse job id")
			}
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			updated, err := application.Use[*workflowServices.JobService](env.app).
				SendQuote(ctx, id, amountMinor, actor)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", updated.Reference(), updated.State(), updated.Quote().Display())
			return nil
		},
	}
	quote.Flags().Int64Var(&amountMinor, "amount-minor", 0, "quote amount in minor units; omit to send a prepared draft")

	var draftMinor int64
	prepare := &cobra.Command{
		Use:   "prepare-quote <job-id>",
		Short: "Draft a quote amount without sending it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "parse job id")
			}
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			updated, err := application.Use[*workflowServices.JobService](env.app).
				PrepareQuote(ctx, id, draftMinor, actor)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", updated.Reference(), updated.State(), updated.Quote().Display())
			return nil
		},
	}
	prepare.Flags().Int64Var(&draftMinor, "amount-minor", 0, "quote amount in minor units")
	_ = prepare.MarkFlagRequired("amount-minor")

	transitions := []struct {
		use   string
		short string
		call  func(s *workflowServices.JobService, ctx context.Context, id uuid.UUID, actor string) (job.Job, error)
	}{
		{"accept", "Mark the quote accepted; starts the turnaround clock", (*workflowServices.JobService).AcceptQuote},
		{"start", "Begin work", (*workflowServices.JobService).StartWork},
		{"hold", "Put the job on hold", (*workflowServices.JobService).Hold},
		{"resume", "Resume a held job", (*workflowServices.JobService).Resume},
		{"complete", "Mark the job completed", (*workflowServices.JobService).Complete},
		{"decline", "Decline the job", (*workflowServices.JobService).Decline},
	}
	for _, t := range transitions {
		call := t.call
		cmd.AddCommand(&cobra.Command{
			Use:   t.use + " <job-id>",
			Short: t.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return errors.Wrap(err, "parse job id")
				}
				env, ctx, closeFn, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()
				updated, err := call(application.Use[*workflowServices.JobService](env.app), ctx, id, actor)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", updated.Reference(), updated.State())
				return nil
			},
		})
	}

	var state, bucket string
	list := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			svc := application.Use[*workflowServices.JobService](env.app)
			jobs, err := svc.List(ctx, &job.FindParams{
				State:  job.State(state),
				Bucket: job.SLABucket(bucket),
				Limit:  100,
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REFERENCE\tSTATE\tSLA\tCUSTOMER\tQUOTE")
			for _, j := range jobs {
				quoteDisplay := ""
				if j.Quote() != nil {
					quoteDisplay = j.Quote().Display()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					j.Reference(), j.State(), svc.Bucket(j), j.CustomerEmail(), quoteDisplay)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&state, "state", "", "filter by state")
	list.Flags().StringVar(&bucket, "bucket", "", "filter by SLA bucket (on_track, at_risk, overdue)")

	cmd.AddCommand(create, prepare, quote, list)
	return cmd
}

func invoicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage invoices",
	}

	var actor string
	cmd.PersistentFlags().StringVar(&actor, "actor", "cli", "who performs the action")

	var kind string
	var amountMinor int64
	generate := &cobra.Command{
		Use:   "generate <job-id>",
		Short: "Generate an invoice for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "parse job id")
			}
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			created, err := application.Use[*billingServices.InvoiceService](env.app).
				Generate(ctx, billingServices.GenerateInvoiceDTO{
					JobID:       id,
					Kind:        invoice.Kind(kind),
					AmountMinor: amountMinor,
					Actor:       actor,
				})
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\tnet %s\ttax %s\ttotal %s\n",
				created.Number(), created.Status(),
				created.Net().Display(), created.Tax().Display(), created.Total().Display())
			return nil
		},
	}
	generate.Flags().StringVar(&kind, "kind", "full", "invoice kind: full, deposit or balance")
	generate.Flags().Int64Var(&amountMinor, "amount-minor", 0, "net amount in minor units (deposit only)")

	send := &cobra.Command{
		Use:   "send <invoice-id>",
		Short: "Mark an invoice sent and queue the email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "parse invoice id")
			}
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			updated, err := application.Use[*billingServices.InvoiceService](env.app).
				MarkSent(ctx, id, actor)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", updated.Number(), updated.Status())
			return nil
		},
	}

	var method, reference string
	pay := &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Record a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "parse invoice id")
			}
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			updated, err := application.Use[*billingServices.InvoiceService](env.app).
				RecordPayment(ctx, id, method, reference, actor)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", updated.Number(), updated.Status())
			return nil
		},
	}
	pay.Flags().StringVar(&method, "method", "", "payment method, e.g. bank_transfer")
	pay.Flags().StringVar(&reference, "reference", "", "payment reference")
	_ = pay.MarkFlagRequired("method")

	remind := &cobra.Command{
		Use:   "remind",
		Short: "Queue reminder emails for overdue invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			count, err := application.Use[*billingServices.InvoiceService](env.app).
				ReminderSweep(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("queued %d reminder(s)\n", count)
			return nil
		},
	}

	cmd.AddCommand(generate, send, pay, remind)
	return cmd
}

func submissionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Manage contact submissions",
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete all submissions and clear the rate limiter",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := application.Use[*intakeServices.SubmissionService](env.app).ResetAll(ctx); err != nil {
				return err
			}
			fmt.Println("submissions reset")
			return nil
		},
	}

	cmd.AddCommand(reset)
	return cmd
}

func outboxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Operate the notification outbox",
	}

	drain := &cobra.Command{
		Use:   "drain",
		Short: "Dispatch one batch of pending notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, ctx, closeFn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			relay, err := outbox.NewRelay(env.pool, notify.Table,
				application.Use[*email.Dispatcher](env.app),
				outbox.RelayOptions{
					BatchSize:   env.conf.Outbox.BatchSize,
					MaxAttempts: env.conf.Outbox.MaxAttempts,
				},
			)
			if err != nil {
				return errors.Wrap(err, "build relay")
			}
			return relay.ProcessBatch(ctx)
		},
	}

	cmd.AddCommand(drain)
	return cmd
}
