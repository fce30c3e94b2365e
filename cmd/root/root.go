package root

import (
	"context"
	"fmt"
	"log"

	"github.com/dinerozz/orgs-console/cmd/mock"
	"github.com/dinerozz/orgs-console/config"
	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/dinerozz/orgs-console/internal/groups"
	"github.com/dinerozz/orgs-console/internal/relation"
	"github.com/dinerozz/orgs-console/internal/session"
	"github.com/dinerozz/orgs-console/pkg/utils"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orgs-console",
	Short: "Browse organizations and manage membership requests",
}

func GetRootCmd(cfg *config.Config) *cobra.Command {
	newSession := func() *session.Session {
		client := groups.NewClient(cfg.Groups.URL, cfg.Groups.Token, nil)
		return session.New(client, cfg.Groups.Username)
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "orgs",
		Short: "List organizations",
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			defer s.Close()

			if err := s.LoadOrgs(context.Background()); err != nil {
				log.Fatal("❌ Failed to load organizations:", err)
			}
			orgs, _ := s.Snapshot().Browse.Value()
			for _, org := range orgs {
				fmt.Printf("%-20s %-30s owner=%s members=%d\n", org.ID, org.Name, org.Owner, len(org.Members))
			}
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "org <id>",
		Short: "Show one organization and your relation to it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			defer s.Close()

			if err := s.LoadOrg(context.Background(), args[0]); err != nil {
				log.Fatal("❌ Failed to load organization:", err)
			}
			detail, _ := s.Snapshot().Org.Value()
			if detail.Group == nil {
				fmt.Println("organization not found")
				return
			}
			printOrg(detail)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "join <id>",
		Short: "Request membership in an organization",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			defer s.Close()

			ctx := context.Background()
			if err := s.LoadOrg(ctx, args[0]); err != nil {
				log.Fatal("❌ Failed to load organization:", err)
			}
			if err := s.RequestMembership(ctx, args[0]); err != nil {
				log.Fatal("❌ Membership request refused:", err)
			}
			fmt.Println("✅ Membership requested")
		},
	})

	var includeClosed bool
	requestsCmd := &cobra.Command{
		Use:   "requests <orgid>",
		Short: "List an organization's inbound requests (admins only)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			defer s.Close()

			if err := s.LoadRequests(context.Background(), args[0], includeClosed); err != nil {
				log.Fatal("❌ Failed to load requests:", err)
			}
			requests, _ := s.Snapshot().Requests.Value()
			printRequests(requests)
		},
	}
	requestsCmd.Flags().BoolVarP(&includeClosed, "closed", "c", false, "Include closed requests")
	rootCmd.AddCommand(requestsCmd)

	var inviteUser string
	inviteCmd := &cobra.Command{
		Use:   "invite <orgid> <query>",
		Short: "Search users and optionally send an invitation",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			defer s.Close()

			ctx := context.Background()
			if err := s.LoadOrg(ctx, args[0]); err != nil {
				log.Fatal("❌ Failed to load organization:", err)
			}
			if _, err := s.SearchUsers(ctx, args[1]); err != nil {
				log.Fatal("❌ User search failed:", err)
			}

			matches, _ := s.Snapshot().Invite.Users.Value()
			if len(matches) == 0 {
				fmt.Println("no users found")
				return
			}
			for _, m := range matches {
				fmt.Printf("%-20s %-30s %s\n", m.Username, m.RealName, m.Relation)
			}

			if inviteUser == "" {
				return
			}
			s.SelectUser(inviteUser)
			if err := s.SendInvitation(ctx); err != nil {
				log.Fatal("❌ Invitation refused:", err)
			}
			fmt.Printf("✅ Invitation sent to %s\n", inviteUser)
		},
	}
	inviteCmd.Flags().StringVarP(&inviteUser, "user", "u", "", "Username to invite from the search results")
	rootCmd.AddCommand(inviteCmd)

	rootCmd.AddCommand(transitionCmd(newSession, "accept", "Accept an open request",
		func(ctx context.Context, s *session.Session, id string) error { return s.AcceptRequest(ctx, id) }))
	rootCmd.AddCommand(transitionCmd(newSession, "deny", "Deny an open request",
		func(ctx context.Context, s *session.Session, id string) error { return s.DenyRequest(ctx, id) }))
	rootCmd.AddCommand(transitionCmd(newSession, "cancel", "Cancel your own open request",
		func(ctx context.Context, s *session.Session, id string) error { return s.CancelRequest(ctx, id) }))

	rootCmd.AddCommand(mock.GetMockCmd(cfg))

	return rootCmd
}

func transitionCmd(newSession func() *session.Session, use, short string, run func(context.Context, *session.Session, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <requestid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			defer s.Close()

			if err := run(context.Background(), s, args[0]); err != nil {
				log.Fatal("❌ Request transition refused:", err)
			}
			fmt.Println("✅ Done")
		},
	}
}

func printOrg(detail session.OrgDetail) {
	group := detail.Group
	fmt.Printf("%s (%s)\n", group.Name, group.ID)
	fmt.Printf("  owner:       %s\n", group.Owner)
	fmt.Printf("  admins:      %v\n", group.Admins)
	fmt.Printf("  members:     %v\n", group.Members)
	fmt.Printf("  description: %s\n", group.Description)
	fmt.Printf("  created:     %s\n", utils.FormatEpochMillis(group.CreateDate))
	fmt.Printf("  relation:    %s\n", detail.Relation)
	if len(detail.MyRequests) > 0 {
		fmt.Println("  your requests:")
		printRequests(detail.MyRequests)
	}
	if detail.Relation == relation.Admin || detail.Relation == relation.Owner {
		fmt.Println("  inbound requests:")
		printRequests(detail.AdminRequests)
	}
}

func printRequests(requests []entity.Request) {
	for _, r := range requests {
		fmt.Printf("    %s %-25s %-10s requester=%-15s created=%s\n",
			r.ID, r.Type, r.Status, r.Requester, utils.FormatEpochMillis(r.CreateDate))
	}
}
