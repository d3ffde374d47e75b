package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/storage/s3"
)

func main() {
	// Define command-line flags
	region := flag.String("region", "us-east-1", "AWS region")
	bucket := flag.String("bucket", "", "S3 bucket name")
	accessKey := flag.String("access-key", "", "AWS access key ID")
	secretKey := flag.String("secret-key", "", "AWS secret access key")
	endpoint := flag.String("endpoint", "", "Custom S3 endpoint (for MinIO, etc.)")
	usePathStyle := flag.Bool("use-path-style", false, "Use path-style addressing")
	enableSSE := flag.Bool("enable-sse", false, "Enable server-side encryption")
	sseAlgorithm := flag.String("sse-algorithm", "AES256", "SSE algorithm (AES256 or aws:kms)")
	sseKMSKeyID := flag.String("sse-kms-key-id", "", "KMS key ID for aws:kms algorithm")
	createBucket := flag.Bool("create-bucket", false, "Create bucket if it doesn't exist")

	// Define commands
	command := flag.String("command", "help", "Command to execute: upload, download, delete, stat, list, help")
	archiveKey := flag.String("key", "", "Archive key for operations")
	filePath := flag.String("file", "", "File path for upload/download")
	prefix := flag.String("prefix", "", "Key prefix for list")

	// MinIO shortcut
	useMinio := flag.Bool("use-minio", false, "Use MinIO defaults (sets endpoint, path-style, etc.)")
	minioEndpoint := flag.String("minio-endpoint", "http://localhost:9000", "MinIO server endpoint")

	flag.Parse()

	// Apply MinIO defaults if requested
	if *useMinio {
		*endpoint = *minioEndpoint
		*usePathStyle = true
		*createBucket = true
		if *accessKey == "" {
			*accessKey = "minioadmin"
		}
		if *secretKey == "" {
			*secretKey = "minioadmin"
		}
	}

	// Check for required parameters
	if *bucket == "" && *command != "help" && *command != "" {
		log.Fatal("Bucket name is required")
	}

	// Check for environment variables if flags not provided
	if *accessKey == "" {
		*accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}

	if *secretKey == "" {
		*secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	// Initialize S3 archive store
	config := s3.Config{
		Region:                 *region,
		Bucket:                 *bucket,
		AccessKeyID:            *accessKey,
		SecretAccessKey:        *secretKey,
		Endpoint:               *endpoint,
		UsePathStyle:           *usePathStyle,
		EnableSSE:              *enableSSE,
		SSEAlgorithm:           *sseAlgorithm,
		SSEKMSKeyID:            *sseKMSKeyID,
		CreateBucketIfNotExist: *createBucket,
	}

	// Skip store initialization for help command
	var store simplescene.ArchiveStore
	var ctx context.Context

	if *command != "help" && *command != "" {
		fmt.Println("Initializing S3 archive store with the following configuration:")
		fmt.Printf("  Region: %s\n", config.Region)
		fmt.Printf("  Bucket: %s\n", config.Bucket)
		fmt.Printf("  Endpoint: %s\n", config.Endpoint)
		fmt.Printf("  Use Path Style: %v\n", config.UsePathStyle)
		fmt.Printf("  Create Bucket If Not Exist: %v\n", config.CreateBucketIfNotExist)
		fmt.Printf("  Server-side Encryption: %v\n", config.EnableSSE)
		if config.EnableSSE {
			fmt.Printf("  SSE Algorithm: %s\n", config.SSEAlgorithm)
		}
		fmt.Println()

		var err error
		store, err = s3.New(config)
		if err != nil {
			log.Fatalf("Failed to initialize S3 archive store: %v", err)
		}

		ctx = context.Background()
	}

	// Execute command
	switch strings.ToLower(*command) {
	case "upload":
		if *archiveKey == "" || *filePath == "" {
			log.Fatal("Archive key and file path are required for upload")
		}

		file, err := os.Open(*filePath)
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}
		defer file.Close()

		fmt.Printf("Uploading %s to %s...\n", *filePath, *archiveKey)
		startTime := time.Now()
		err = store.Save(ctx, *archiveKey, file)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		fmt.Printf("Upload successful (took %v)\n", duration)

	case "download":
		if *archiveKey == "" || *filePath == "" {
			log.Fatal("Archive key and file path are required for download")
		}

		fmt.Printf("Downloading %s to %s...\n", *archiveKey, *filePath)
		startTime := time.Now()
		reader, err := store.Open(ctx, *archiveKey)
		if err != nil {
			log.Fatalf("Download failed: %v", err)
		}
		defer reader.Close()

		file, err := os.Create(*filePath)
		if err != nil {
			log.Fatalf("Failed to create file: %v", err)
		}
		defer file.Close()

		bytesWritten, err := io.Copy(file, reader)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Failed to write file: %v", err)
		}
		fmt.Printf("Download successful: %d bytes (took %v)\n", bytesWritten, duration)

	case "delete":
		if *archiveKey == "" {
			log.Fatal("Archive key is required for delete")
		}

		fmt.Printf("Deleting %s...\n", *archiveKey)
		startTime := time.Now()
		err := store.Delete(ctx, *archiveKey)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Printf("Delete successful (took %v)\n", duration)

	case "stat":
		if *archiveKey == "" {
			log.Fatal("Archive key is required for stat")
		}

		startTime := time.Now()
		info, err := store.Stat(ctx, *archiveKey)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Stat failed: %v", err)
		}
		fmt.Printf("Key:      %s\n", info.Key)
		fmt.Printf("Size:     %d bytes\n", info.Size)
		fmt.Printf("Modified: %s\n", info.UpdatedAt.Format(time.RFC3339))
		if info.ETag != "" {
			fmt.Printf("ETag:     %s\n", info.ETag)
		}
		fmt.Printf("Fetched in %v\n", duration)

	case "list":
		startTime := time.Now()
		keys, err := store.List(ctx, *prefix)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("List failed: %v", err)
		}
		if len(keys) == 0 {
			fmt.Println("No archives found")
		} else {
			for _, key := range keys {
				fmt.Println(key)
			}
			fmt.Printf("\nTotal: %d", len(keys))
		}
		fmt.Printf(" (took %v)\n", duration)

	case "help", "":
		fmt.Println("S3 Archive Store Test Application")
		fmt.Println("\nCommands:")
		fmt.Println("  upload    Upload a scene archive to S3")
		fmt.Println("  download  Download a scene archive from S3")
		fmt.Println("  delete    Delete an archive from S3")
		fmt.Println("  stat      Show metadata for an archive")
		fmt.Println("  list      List archive keys under a prefix")
		fmt.Println("  help      Show this help message")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  Upload an archive to AWS S3:")
		fmt.Println("    s3test -bucket my-bucket -access-key AKIAXXXX -secret-key XXXX -command upload -key scenes/rig.json -file ./rig.json")
		fmt.Println("\n  Upload an archive to MinIO:")
		fmt.Println("    s3test -use-minio -bucket my-bucket -command upload -key scenes/rig.json -file ./rig.json")
		fmt.Println("\n  List archives under a prefix:")
		fmt.Println("    s3test -bucket my-bucket -command list -prefix scenes/")

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}
