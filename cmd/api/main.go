package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gestion-hospitaliere/internal/app"
	"gestion-hospitaliere/internal/app/bootstrap"
	"gestion-hospitaliere/internal/infrastructure/database/migrations"
	"gestion-hospitaliere/internal/infrastructure/database/seeds"
	comptes "gestion-hospitaliere/internal/modules/back-office/users/services/comptes"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const commandTimeout = 2 * time.Minute

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital",
		Short: "API de gestion hospitalière",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Démarre le serveur HTTP et les workers de notifications",
		Run: func(cmd *cobra.Command, args []string) {
			fx.New(app.AppModule).Run()
		},
	}
}

// runWith démarre un conteneur fx restreint, exécute fn puis l'arrête
func runWith(module fx.Option, fn interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	container := fx.New(module, fx.Invoke(fn))
	if err := container.Err(); err != nil {
		return err
	}
	if err := container.Start(ctx); err != nil {
		return err
	}
	return container.Stop(ctx)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Gestion du schéma de base de données",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Applique les migrations en attente",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetBool("seed")
			return runMigrations(seed)
		},
	}
	upCmd.Flags().Bool("seed", false, "Insère les services de référence si absents")
	cmd.AddCommand(upCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Affiche les migrations appliquées et en attente",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(app.MigrateModule, func(lc fx.Lifecycle, migrator *migrations.Migrator) {
				lc.Append(fx.StartHook(func(ctx context.Context) error {
					status, err := migrator.GetStatus(ctx)
					if err != nil {
						return err
					}
					for _, v := range status.Applied {
						fmt.Printf("  [x] %s\n", v)
					}
					for _, v := range status.Pending {
						fmt.Printf("  [ ] %s\n", v)
					}
					return nil
				}))
			})
		},
	})

	return cmd
}

func runMigrations(seed bool) error {
	return runWith(app.MigrateModule, func(
		lc fx.Lifecycle,
		extensions *bootstrap.ExtensionManager,
		migrator *migrations.Migrator,
		seeder seeds.SeedingService,
	) {
		lc.Append(fx.StartHook(func(ctx context.Context) error {
			if err := extensions.EnsureRequiredExtensions(ctx); err != nil {
				return err
			}
			applied, err := migrator.ApplyMigrations(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d migration(s) appliquée(s)\n", applied)

			if !seed {
				return nil
			}
			inserted, err := seeder.SeedServices(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d service(s) de référence inséré(s)\n", inserted)
			return nil
		}))
	})
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crée un compte administrateur ou promeut un compte existant",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")

			return runWith(app.AdminModule, func(lc fx.Lifecycle, service *comptes.ComptesService) {
				lc.Append(fx.StartHook(func(ctx context.Context) error {
					result, err := service.CreateOrPromoteAdmin(ctx, name, email, password)
					if err != nil {
						return err
					}
					if !result.Created {
						fmt.Printf("Compte %s promu administrateur\n", result.User.Email)
						return nil
					}
					fmt.Printf("Administrateur créé: %s (%s)\n", result.User.Email, result.User.ID)
					if result.Password != "" {
						fmt.Printf("Mot de passe temporaire: %s\n", result.Password)
					}
					return nil
				}))
			})
		},
	}
	cmd.Flags().String("email", "", "Email du compte (obligatoire)")
	cmd.Flags().String("name", "", "Nom affiché (création uniquement)")
	cmd.Flags().String("password", "", "Mot de passe; généré si absent")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
