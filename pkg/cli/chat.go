package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/usecase"
)

const chatHistoryWindow = 12

func cmdChat() *cli.Command {
	var userID string
	var guest bool
	var brandMemory bool
	var forceRAG bool
	var deterministic bool
	var rt runtime

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Usage:       "User ID for the session",
			Value:       "local-user",
			Sources:     cli.EnvVars("BRANDLOOM_USER"),
			Destination: &userID,
		},
		&cli.BoolFlag{
			Name:        "guest",
			Usage:       "Run the session unauthenticated",
			Destination: &guest,
		},
		&cli.BoolFlag{
			Name:        "brand-memory",
			Usage:       "Inject brand identity summaries into the session context",
			Destination: &brandMemory,
		},
		&cli.BoolFlag{
			Name:        "force-rag",
			Usage:       "Refuse to answer when retrieval is insufficient",
			Destination: &forceRAG,
		},
		&cli.BoolFlag{
			Name:        "deterministic",
			Usage:       "Force deterministic sampling for reproducible replies",
			Destination: &deterministic,
		},
	}
	flags = append(flags, rt.flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Start an interactive chat session",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			prompt := color.New(color.FgCyan, color.Bold)
			reply := color.New(color.FgGreen)
			meta := color.New(color.FgYellow)

			fmt.Printf("Chatting as %s (type %s to leave)\n\n", userID, color.CyanString("exit"))

			var history []model.ChatTurn
			scanner := bufio.NewScanner(os.Stdin)
			for {
				prompt.Print("you> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				resp, err := uc.Orchestrator.Chat(ctx, &usecase.ChatRequest{
					UserID:          types.UserID(userID),
					Message:         line,
					History:         history,
					IsAuthenticated: !guest,
					BrandMemory:     brandMemory,
					ForceRAG:        forceRAG,
					Deterministic:   deterministic,
				})
				if err != nil {
					meta.Printf("error: %s\n", err.Error())
					continue
				}

				reply.Printf("bot> %s\n", resp.Response)
				if resp.TaskID != "" {
					meta.Printf("     task %s (intent: %s, success: %t)\n",
						resp.TaskID, resp.Intent, resp.ActionSuccess)
				}

				history = append(history,
					model.ChatTurn{Role: model.ChatRoleUser, Content: line},
					model.ChatTurn{Role: model.ChatRoleAssistant, Content: resp.Response},
				)
				if len(history) > chatHistoryWindow {
					history = history[len(history)-chatHistoryWindow:]
				}
			}

			return scanner.Err()
		},
	}
}
