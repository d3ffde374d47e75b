package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/admin"
	"github.com/tendant/simple-scene/pkg/simplescene/config"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	// Load server configuration
	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Build repository once and share it so the shell and the admin
	// listings see the same store
	repo, err := serverConfig.BuildRepository()
	if err != nil {
		log.Fatalf("Failed to build repository: %v", err)
	}

	svc, err := serverConfig.BuildServiceWithRepository(repo)
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	// Start admin shell
	shell := NewAdminShell(svc, admin.New(repo))
	shell.Run()
}

// AdminShell provides an interactive admin interface over a scene store
type AdminShell struct {
	service  simplescene.Service
	adminSvc admin.AdminService
}

// NewAdminShell creates a new admin shell
func NewAdminShell(service simplescene.Service, adminSvc admin.AdminService) *AdminShell {
	return &AdminShell{
		service:  service,
		adminSvc: adminSvc,
	}
}

// Run starts the interactive admin shell
func (s *AdminShell) Run() {
	reader := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	fmt.Println("=== Simple Scene Admin Shell ===")
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()

	for {
		fmt.Print("admin> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		command := parts[0]

		switch command {
		case "help", "h":
			s.showHelp()
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			return
		case "scenes":
			s.handleScenes(ctx)
		case "list", "ls":
			s.handleList(ctx, parts[1:])
		case "count":
			s.handleCount(ctx, parts[1:])
		case "stats":
			s.handleStats(ctx, parts[1:])
		case "get":
			s.handleGet(ctx, parts[1:])
		case "attrs":
			s.handleAttrs(ctx, parts[1:])
		case "conns":
			s.handleConns(ctx, parts[1:])
		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", command)
		}
	}
}

func (s *AdminShell) showHelp() {
	help := `
Available Commands:

  scenes                List all scenes

  list, ls              List nodes across all scenes
  list <scene-id>       List nodes for a specific scene

  count                 Count all nodes
  count <scene-id>      Count nodes for a specific scene

  stats                 Show overall node statistics
  stats <scene-id>      Show statistics for a specific scene

  get <node-id>         Get details for a specific node
  attrs <node-id>       List attributes of a node
  conns <node-id> <attr>  List inbound connections on an attribute

  help, h               Show this help message
  exit, quit, q         Exit admin shell

Examples:
  scenes
  list
  list 550e8400-e29b-41d4-a716-446655440000
  count
  stats
  get abcd1234-5678-90ef-ghij-klmnopqrstuv
  attrs abcd1234-5678-90ef-ghij-klmnopqrstuv
  conns abcd1234-5678-90ef-ghij-klmnopqrstuv mirror
`
	fmt.Println(help)
}

func (s *AdminShell) handleScenes(ctx context.Context) {
	scenes, err := s.service.ListScenes(ctx)
	if err != nil {
		fmt.Printf("Error listing scenes: %v\n", err)
		return
	}

	if len(scenes) == 0 {
		fmt.Println("No scenes found")
		return
	}

	fmt.Printf("%-36s  %-24s  %-20s\n", "ID", "Name", "Created")
	fmt.Println(strings.Repeat("-", 86))
	for _, scene := range scenes {
		name := scene.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Printf("%-36s  %-24s  %-20s\n",
			scene.ID.String(),
			name,
			scene.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Printf("\nTotal: %d\n", len(scenes))
}

func (s *AdminShell) handleList(ctx context.Context, args []string) {
	filters := admin.NodeFilters{}
	limit := 20
	filters.Limit = &limit

	if len(args) > 0 {
		// First arg is scene ID
		if sceneID, err := uuid.Parse(args[0]); err == nil {
			filters.SceneID = &sceneID
		} else {
			fmt.Printf("Invalid scene ID: %s\n", args[0])
			return
		}
	}

	resp, err := s.adminSvc.ListAllNodes(ctx, admin.ListNodesRequest{
		Filters: filters,
	})
	if err != nil {
		fmt.Printf("Error listing nodes: %v\n", err)
		return
	}

	if len(resp.Nodes) == 0 {
		fmt.Println("No nodes found")
		return
	}

	fmt.Printf("%-36s  %-20s  %-15s  %-36s\n", "ID", "Name", "Kind", "Scene")
	fmt.Println(strings.Repeat("-", 113))
	for _, node := range resp.Nodes {
		name := node.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		kind := node.Kind
		if kind == "" {
			kind = "-"
		}
		if len(kind) > 15 {
			kind = kind[:12] + "..."
		}
		fmt.Printf("%-36s  %-20s  %-15s  %-36s\n",
			node.ID.String(),
			name,
			kind,
			node.SceneID.String(),
		)
	}
	fmt.Printf("\nTotal: %d", len(resp.Nodes))
	if resp.HasMore {
		fmt.Printf(" (showing first %d, use the admin CLI for pagination)", limit)
	}
	fmt.Println()
}

func (s *AdminShell) handleCount(ctx context.Context, args []string) {
	filters := admin.NodeFilters{}

	if len(args) > 0 {
		if sceneID, err := uuid.Parse(args[0]); err == nil {
			filters.SceneID = &sceneID
		} else {
			fmt.Printf("Invalid scene ID: %s\n", args[0])
			return
		}
	}

	resp, err := s.adminSvc.CountNodes(ctx, admin.CountRequest{
		Filters: filters,
	})
	if err != nil {
		fmt.Printf("Error counting nodes: %v\n", err)
		return
	}

	fmt.Printf("Total count: %d\n", resp.Count)
}

func (s *AdminShell) handleStats(ctx context.Context, args []string) {
	filters := admin.NodeFilters{}

	if len(args) > 0 {
		if sceneID, err := uuid.Parse(args[0]); err == nil {
			filters.SceneID = &sceneID
		} else {
			fmt.Printf("Invalid scene ID: %s\n", args[0])
			return
		}
	}

	resp, err := s.adminSvc.GetStatistics(ctx, admin.StatisticsRequest{
		Filters: filters,
		Options: admin.DefaultStatisticsOptions(),
	})
	if err != nil {
		fmt.Printf("Error getting statistics: %v\n", err)
		return
	}

	stats := resp.Statistics
	fmt.Printf("\nTotal Count: %d\n", stats.TotalCount)

	if len(stats.ByKind) > 0 {
		fmt.Println("\nBy Kind:")
		for kind, count := range stats.ByKind {
			fmt.Printf("  %-15s: %d\n", kind, count)
		}
	}

	if len(stats.ByScene) > 0 {
		fmt.Println("\nBy Scene:")
		for scene, count := range stats.ByScene {
			fmt.Printf("  %s: %d\n", scene, count)
		}
	}

	if len(stats.ByAttrType) > 0 {
		fmt.Println("\nBy Attribute Type:")
		for attrType, count := range stats.ByAttrType {
			fmt.Printf("  %-15s: %d\n", attrType, count)
		}
	}

	fmt.Printf("\nConnections: %d\n", stats.ConnectionCount)
	fmt.Println()
}

func (s *AdminShell) handleGet(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: get <node-id>")
		return
	}

	nodeID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Printf("Invalid node ID: %s\n", args[0])
		return
	}

	node, err := s.service.GetNode(ctx, nodeID)
	if err != nil {
		fmt.Printf("Error getting node: %v\n", err)
		return
	}

	// Pretty print as JSON
	data, _ := json.MarshalIndent(node, "", "  ")
	fmt.Println(string(data))
}

func (s *AdminShell) handleAttrs(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: attrs <node-id>")
		return
	}

	nodeID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Printf("Invalid node ID: %s\n", args[0])
		return
	}

	attrs, err := s.service.ListAttributes(ctx, nodeID)
	if err != nil {
		fmt.Printf("Error listing attributes: %v\n", err)
		return
	}

	if len(attrs) == 0 {
		fmt.Println("No attributes found")
		return
	}

	fmt.Printf("%-24s  %-8s  %s\n", "Name", "Type", "Value")
	fmt.Println(strings.Repeat("-", 70))
	for _, attr := range attrs {
		name := attr.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Printf("%-24s  %-8s  %s\n", name, attr.Type, formatValue(attr))
	}
	fmt.Printf("\nTotal: %d\n", len(attrs))
}

func (s *AdminShell) handleConns(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: conns <node-id> <attr>")
		return
	}

	nodeID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Printf("Invalid node ID: %s\n", args[0])
		return
	}

	conns, err := s.service.Connections(ctx, nodeID, args[1])
	if err != nil {
		fmt.Printf("Error listing connections: %v\n", err)
		return
	}

	if len(conns) == 0 {
		fmt.Println("No connections found")
		return
	}

	fmt.Printf("%-4s  %-36s  %-20s\n", "Seq", "Source", "Created")
	fmt.Println(strings.Repeat("-", 66))
	for _, conn := range conns {
		fmt.Printf("%-4d  %-36s  %-20s\n",
			conn.Seq,
			conn.SourceID.String(),
			conn.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Printf("\nTotal: %d\n", len(conns))
}

func formatValue(attr *simplescene.Attribute) string {
	switch attr.Type {
	case simplescene.AttrTypeString:
		value := attr.StringValue
		if len(value) > 40 {
			value = value[:37] + "..."
		}
		return strconv.Quote(value)
	case simplescene.AttrTypeInt:
		return strconv.FormatInt(attr.IntValue, 10)
	case simplescene.AttrTypeFloat:
		return strconv.FormatFloat(attr.FloatValue, 'g', -1, 64)
	case simplescene.AttrTypeMessage:
		return "(message)"
	default:
		return "?"
	}
}
