// Package clientcli provides a client library for downloading files from
// assetgate servers.
//
// Requests authenticate with either an API key header or a bearer token.
// Profiles in a YAML file hold the endpoint and credential for each server.
//
// # Basic Usage
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:5708",
//		APIKey:   os.Getenv("ASSETGATE_API_KEY"),
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, _, err := client.Download(ctx, clientcli.DownloadOptions{
//		FileName: "report.csv",
//		Resume:   true,
//	})
//
// # Conditional Downloads
//
// An ETagCache remembers the ETag of each downloaded file. Passing it back
// as DownloadOptions.IfNoneMatch turns an unchanged file into a 304 and no
// transfer:
//
//	cache, _ := clientcli.LoadETagCache(clientcli.DefaultETagCachePath())
//	etag, _ := cache.Lookup(client.Endpoint(), "report.csv", "report.csv")
//	result, _, err := client.Download(ctx, clientcli.DownloadOptions{
//		FileName:    "report.csv",
//		IfNoneMatch: etag,
//	})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatDownload(os.Stdout, result)
package clientcli
