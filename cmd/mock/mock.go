package mock

import (
	"fmt"
	"log"

	"github.com/dinerozz/orgs-console/config"
	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/dinerozz/orgs-console/pkg/utils"
	"github.com/dinerozz/orgs-console/server"
	"github.com/spf13/cobra"
)

// GetMockCmd returns the fixture-service command group: a seeded in-memory
// groups service for local development, plus token minting for it.
func GetMockCmd(cfg *config.Config) *cobra.Command {
	mockCmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a fixture groups service",
		Run: func(cmd *cobra.Command, args []string) {
			store := server.NewStore()
			seed(store)
			server.RunServer(cfg, store)
		},
	}

	var username string
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the fixture service",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := utils.GenerateToken(username)
			if err != nil {
				log.Fatal("❌ Failed to mint token:", err)
			}
			fmt.Println(token)
		},
	}
	tokenCmd.Flags().StringVarP(&username, "user", "u", "dev", "Username the token authenticates as")
	mockCmd.AddCommand(tokenCmd)

	return mockCmd
}

func seed(store *server.Store) {
	users := []entity.User{
		{Username: "aparkin", RealName: "Adam Arkin"},
		{Username: "ciservices", RealName: "CI Services"},
		{Username: "dev", RealName: "Local Developer"},
		{Username: "kimbrel", RealName: "Jeff Kimbrel"},
		{Username: "mhenderson", RealName: "Mark Henderson"},
	}
	for _, u := range users {
		store.AddUser(u)
	}

	store.PutGroup(entity.Group{
		ID:      "commons",
		Name:    "Data Commons",
		Owner:   "dev",
		Admins:  []string{"ciservices"},
		Members: []string{"ciservices", "kimbrel"},
		Description: "Shared datasets and workflows for the local " +
			"development environment.",
	})
	store.PutGroup(entity.Group{
		ID:          "modeling",
		Name:        "Metabolic Modeling",
		Owner:       "aparkin",
		Admins:      []string{},
		Members:     []string{},
		Description: "Public modeling group.",
	})
	store.PutGroup(entity.Group{
		ID:          "private-lab",
		Name:        "Private Lab",
		Owner:       "mhenderson",
		Admins:      []string{},
		Members:     []string{},
		Description: "Invitation only.",
		Private:     true,
	})
}
