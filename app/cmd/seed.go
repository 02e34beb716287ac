package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/hogar/store"
)

// newSeedCmd populates the database with a demo household so the assistant
// can be exercised without the full backend around it.
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with a demo household",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewSQLiteStore(globalCfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmd.Context()
			now := time.Now()

			ana, err := st.AddMember(ctx, store.Member{HouseholdID: 1, RoleID: 1, RoleName: "admin", DisplayName: "Ana", Active: true})
			if err != nil {
				return err
			}
			luis, err := st.AddMember(ctx, store.Member{HouseholdID: 1, RoleID: 2, RoleName: "adulto", DisplayName: "Luis", Active: true})
			if err != nil {
				return err
			}

			seedTasks := []store.Task{
				{HouseholdID: 1, AssignedTo: ana.ID, CreatedBy: luis.ID, Title: "Sacar la basura", DueDate: now.AddDate(0, 0, 1)},
				{HouseholdID: 1, AssignedTo: ana.ID, CreatedBy: ana.ID, Title: "Comprar detergente", DueDate: now.AddDate(0, 0, 5)},
				{HouseholdID: 1, AssignedTo: luis.ID, CreatedBy: ana.ID, Title: "Regar las plantas", DueDate: now.AddDate(0, 0, 2)},
			}
			for _, task := range seedTasks {
				if _, err := st.CreateTask(ctx, task); err != nil {
					return err
				}
			}
			if _, err := st.AddEvent(ctx, store.Event{HouseholdID: 1, Title: "Cena familiar", StartsAt: now.AddDate(0, 0, 2), AssignedTo: 0}); err != nil {
				return err
			}
			if _, err := st.AddInboxMessage(ctx, store.InboxMessage{HouseholdID: 1, SenderID: luis.ID, RecipientID: ana.ID, Body: "¿Puedes recoger el paquete?", SentAt: now}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded household 1 (members %d, %d)\n", ana.ID, luis.ID)
			return nil
		},
	}
}
