package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-scene/pkg/simplescene/admin"
	"github.com/tendant/simple-scene/pkg/simplescene/config"
)

const usage = `Simple Scene Admin CLI

A lightweight admin tool for scene graphs that only requires database access.

USAGE:
  admin <command> [options]

COMMANDS:
  list      List nodes across all scenes with optional filtering
  count     Count nodes with optional filtering
  stats     Get aggregated node statistics

ENVIRONMENT VARIABLES:
  DATABASE_URL      PostgreSQL connection string (omit for in-memory)
  DB_SCHEMA         PostgreSQL schema name (default: scene)

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  # List all nodes
  admin list

  # List nodes in a specific scene
  admin list --scene-id=550e8400-e29b-41d4-a716-446655440000

  # List with pagination
  admin list --limit=10 --offset=0

  # List by kind
  admin list --kind=camera

  # Count all nodes
  admin count

  # Count by kind
  admin count --kind=mesh

  # Get statistics
  admin stats

  # Output as JSON
  admin list --json
  admin stats --json

OPTIONS (for list/count/stats):
  --scene-id=<uuid>            Filter by scene ID
  --kind=<kind>                Filter by node kind
  --name-prefix=<prefix>       Filter by node name prefix
  --limit=<n>                  Maximum results (list only, default: 100)
  --offset=<n>                 Pagination offset (list only, default: 0)
  --sort-by=<field>            Sort by created_at, updated_at, or name
  --sort-order=<order>         Sort order: asc or desc
  --json                       Output as JSON
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	// Check for help
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	// Create admin service
	adminSvc, err := createAdminService()
	if err != nil {
		log.Fatalf("Failed to create admin service: %v", err)
	}

	ctx := context.Background()

	// Parse common flags
	filters, limit, offset, useJSON := parseFilters(os.Args[2:])

	// Execute command
	switch command {
	case "list":
		handleList(ctx, adminSvc, filters, limit, offset, useJSON)
	case "count":
		handleCount(ctx, adminSvc, filters, useJSON)
	case "stats":
		handleStats(ctx, adminSvc, filters, useJSON)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func createAdminService() (admin.AdminService, error) {
	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		return nil, err
	}

	repo, err := cfg.BuildRepository()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseType == "postgres" {
		// Fail early on a bad connection string or missing schema
		if err := config.PingPostgres(cfg.DatabaseURL, cfg.DBSchema); err != nil {
			return nil, err
		}
	}

	return admin.New(repo), nil
}

func parseFilters(args []string) (admin.NodeFilters, int, int, bool) {
	var opts []admin.ListNodesOption
	useJSON := false
	limit := 100
	offset := 0

	for _, arg := range args {
		if arg == "--json" {
			useJSON = true
			continue
		}

		// Parse key=value flags
		key, value := parseFlag(arg)

		switch key {
		case "scene-id":
			if id, err := uuid.Parse(value); err == nil {
				opts = append(opts, admin.WithSceneID(id))
			}
		case "kind":
			opts = append(opts, admin.WithKind(value))
		case "name-prefix":
			opts = append(opts, admin.WithNamePrefix(value))
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				limit = n
			}
		case "offset":
			if n, err := strconv.Atoi(value); err == nil {
				offset = n
			}
		case "sort-by":
			opts = append(opts, admin.WithSortBy(value))
		case "sort-order":
			opts = append(opts, admin.WithSortOrder(value))
		}
	}

	opts = append(opts, admin.WithPagination(limit, offset))
	return admin.NewFilters(opts...), limit, offset, useJSON
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func handleList(ctx context.Context, adminSvc admin.AdminService, filters admin.NodeFilters, limit, offset int, useJSON bool) {
	resp, err := adminSvc.ListAllNodes(ctx, admin.ListNodesRequest{
		Filters: filters,
	})
	if err != nil {
		log.Fatalf("Failed to list nodes: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	// Table output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tKIND\tSCENE\tCREATED\n")
	fmt.Fprintf(w, "───────────\t────────────────\t────────────────\t───────────\t──────────────────────\n")

	for _, node := range resp.Nodes {
		kind := node.Kind
		if kind == "" {
			kind = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			node.ID.String()[:8]+"...",
			truncate(node.Name, 16),
			truncate(kind, 16),
			node.SceneID.String()[:8]+"...",
			node.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d", len(resp.Nodes))
	if resp.HasMore {
		fmt.Printf(" (has more, use --offset=%d to continue)", offset+limit)
	}
	fmt.Println()
}

func handleCount(ctx context.Context, adminSvc admin.AdminService, filters admin.NodeFilters, useJSON bool) {
	resp, err := adminSvc.CountNodes(ctx, admin.CountRequest{
		Filters: filters,
	})
	if err != nil {
		log.Fatalf("Failed to count nodes: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Total count: %d\n", resp.Count)
}

func handleStats(ctx context.Context, adminSvc admin.AdminService, filters admin.NodeFilters, useJSON bool) {
	resp, err := adminSvc.GetStatistics(ctx, admin.StatisticsRequest{
		Filters: filters,
		Options: admin.DefaultStatisticsOptions(),
	})
	if err != nil {
		log.Fatalf("Failed to get statistics: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	stats := resp.Statistics

	fmt.Println("=== Node Statistics ===")
	fmt.Printf("\nTotal Count: %d\n", stats.TotalCount)

	if len(stats.ByKind) > 0 {
		fmt.Println("\nBy Kind:")
		for kind, count := range stats.ByKind {
			if kind == "" {
				kind = "(none)"
			}
			fmt.Printf("  %-15s: %d\n", kind, count)
		}
	}

	if len(stats.ByScene) > 0 {
		fmt.Println("\nBy Scene:")
		for scene, count := range stats.ByScene {
			fmt.Printf("  %-30s: %d\n", truncate(scene, 30), count)
		}
	}

	if len(stats.ByAttrType) > 0 {
		fmt.Println("\nBy Attribute Type:")
		for attrType, count := range stats.ByAttrType {
			fmt.Printf("  %-15s: %d\n", attrType, count)
		}
	}

	fmt.Printf("\nInbound Connections: %d\n", stats.ConnectionCount)

	if stats.OldestNode != nil && stats.NewestNode != nil {
		fmt.Println("\nTime Range:")
		fmt.Printf("  Oldest: %s\n", stats.OldestNode.Format(time.RFC3339))
		fmt.Printf("  Newest: %s\n", stats.NewestNode.Format(time.RFC3339))
	}

	fmt.Printf("\nComputed at: %s\n", resp.ComputedAt.Format(time.RFC3339))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
