package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/growwise/growwise-client/internal/backend"
	"github.com/growwise/growwise-client/internal/domain"
	"github.com/growwise/growwise-client/internal/session"
)

func passwordFromEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("GROWWISE_PASSWORD")
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.sessions.Login(cmd.Context(), email, passwordFromEnv(password))
			if err != nil {
				return errors.New(backend.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $GROWWISE_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var (
		reg          session.Registration
		password     string
		professionID int
		profession   string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			reg.Password = passwordFromEnv(password)
			reg.Profession = domain.Profession(profession)
			if cmd.Flags().Changed("profession-id") {
				reg.ProfessionID = &professionID
			}
			user, err := a.sessions.Register(cmd.Context(), reg)
			if err != nil {
				return errors.New(backend.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $GROWWISE_PASSWORD)")
	cmd.Flags().IntVar(&professionID, "profession-id", 0, "profession id from `growwise professions`")
	cmd.Flags().StringVar(&profession, "profession", "", "profession label shown next to the user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored user, sessions and credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.sessions.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Sync and list conversation threads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.SyncThreads(cmd.Context()); err != nil {
				return errors.New(backend.Message(err))
			}
			out := cmd.OutOrStdout()
			snap := a.sessions.Snapshot()
			for _, s := range snap.Sessions {
				mark, kind := " ", "local"
				if snap.IsActive(s.ID) {
					mark = "*"
				}
				if s.ThreadBacked() {
					kind = "thread"
				}
				fmt.Fprintf(out, "%s %s\t%s\t%s\t%d messages\n", mark, s.ID, kind, s.Title, len(s.Messages))
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <thread-id>",
		Short: "Print a thread with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.IsThreadID(args[0]) {
				return fmt.Errorf("%q is not a thread id", args[0])
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sess := a.sessions.CreateSessionFromThread(cmd.Context(), args[0], "", a.cfg.Session.DefaultAgentID)
			return printJSON(cmd.OutOrStdout(), sess)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <title>",
		Short: "Create an empty thread on the backend and open it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			title := domain.DefaultSessionTitle
			if len(args) == 1 {
				title = args[0]
			}
			thread, err := a.client.CreateThread(cmd.Context(), title)
			if err != nil {
				return errors.New(backend.Message(err))
			}
			sess := a.sessions.CreateSessionFromThread(cmd.Context(), thread.ID, thread.Title, a.cfg.Session.DefaultAgentID)
			return printJSON(cmd.OutOrStdout(), sess)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its server thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.sessions.DeleteSession(cmd.Context(), args[0]) && !domain.IsThreadID(args[0]) {
				return fmt.Errorf("session %s not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	})
	return cmd
}

func newSendCmd() *cobra.Command {
	var sessionID, agentID string
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message and print the agent's reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			id := sessionID
			if id == "" && agentID == "" {
				if active, ok := a.sessions.Snapshot().Active(); ok {
					id = active.ID
				}
			}
			if id == "" {
				if agentID == "" {
					agentID = a.cfg.Session.DefaultAgentID
				}
				id = a.sessions.CreateLocalSession(agentID).ID
			} else if domain.IsThreadID(id) {
				if _, ok := a.sessions.Snapshot().Session(id); !ok {
					a.sessions.CreateSessionFromThread(cmd.Context(), id, "", a.cfg.Session.DefaultAgentID)
				}
			}

			res, err := a.sessions.Send(cmd.Context(), id, strings.Join(args, " "))
			if err != nil && res.Reply.ID == "" {
				return errors.New(backend.Message(err))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Reply.Content)
			fmt.Fprintf(out, "(session %s)\n", res.SessionID)
			return err
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "continue an existing session or thread (default: the active session)")
	cmd.Flags().StringVar(&agentID, "agent", "", "start a new session with this agent")
	return cmd
}

func newRecommendationsCmd() *cobra.Command {
	var kind, generate string
	cmd := &cobra.Command{
		Use:   "recommendations",
		Short: "Show learning recommendations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if generate != "" {
				res, err := a.client.GenerateRecommendations(ctx, generate)
				if err != nil {
					return errors.New(backend.Message(err))
				}
				return printJSON(cmd.OutOrStdout(), res)
			}
			switch k := backend.Kind(kind); {
			case kind == "":
				dash, err := a.client.LoadDashboard(ctx)
				if err != nil {
					return errors.New(backend.Message(err))
				}
				return printJSON(cmd.OutOrStdout(), dash)
			case kind == "agents":
				out, err := a.client.ListAgentRecommendations(ctx)
				if err != nil {
					return errors.New(backend.Message(err))
				}
				return printJSON(cmd.OutOrStdout(), out)
			case k.Valid():
				out, err := a.client.ListRecommendations(ctx, k)
				if err != nil {
					return errors.New(backend.Message(err))
				}
				return printJSON(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("unknown kind %q (articles, courses, videos, agents)", kind)
			}
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "articles, courses, videos or agents (default: all three lists)")
	cmd.Flags().StringVar(&generate, "generate", "", "generate recommendations for a profession")
	return cmd
}

func newProfessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "professions",
		Short: "List selectable professions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.client.ListProfessions(cmd.Context())
			if err != nil {
				return errors.New(backend.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newCertificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certifications",
		Short: "List, add, update or delete certificate links",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			certs, err := a.client.ListCertifications(cmd.Context())
			if err != nil {
				return errors.New(backend.Message(err))
			}
			out := cmd.OutOrStdout()
			for _, c := range certs {
				fmt.Fprintf(out, "%d\t%s\n", c.ID, c.Link)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <link>",
		Short: "Record a certificate link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.client.CreateCertification(cmd.Context(), args[0])
			if err != nil {
				return errors.New(backend.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <id> <link>",
		Short: "Replace a certificate link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid certification id %q", args[0])
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.client.UpdateCertification(cmd.Context(), id, args[1])
			if err != nil {
				return errors.New(backend.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a certification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid certification id %q", args[0])
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.client.DeleteCertification(cmd.Context(), id); err != nil {
				return errors.New(backend.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted certification", id)
			return nil
		},
	})
	return cmd
}
