package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"quillpress/internal/client"
	"quillpress/internal/service"
)

// newClient builds an API client from the persistent flags.
func newClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	return client.New(server, client.WithToken(token))
}

// NewLoginCommand creates the login command. It prints a token suitable
// for --token or QUILLPRESS_TOKEN.
func NewLoginCommand() *cobra.Command {
	var email, password, code string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newClient(cmd).Login(cmd.Context(), service.LoginInput{
				Email: email, Password: password, Code: code,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&code, "code", "", "two-factor code, when enabled")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

// NewPostsCommand creates the posts command.
func NewPostsCommand() *cobra.Command {
	var page, limit int
	var category string

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := client.ListOptions{Page: page, Limit: limit}
			if category != "" {
				id, err := uuid.Parse(category)
				if err != nil {
					return fmt.Errorf("invalid category id %q", category)
				}
				opts.Category = id
			}

			items, p, err := newClient(cmd).ListPosts(cmd.Context(), opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tTITLE\tVIEWS\tCOMMENTS\tCREATED")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					it.Slug, it.Title, it.ViewCount, it.CommentCount, it.CreatedAt.Format("2006-01-02"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d posts)\n", p.Page, p.Pages, p.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "posts per page")
	cmd.Flags().StringVar(&category, "category", "", "only posts in this category id")

	return cmd
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search post titles, content and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := newClient(cmd).SearchPosts(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, p := range posts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t[%s]\n", p.Slug, p.Title, strings.Join(p.Tags, ", "))
			}
			return nil
		},
	}
}
