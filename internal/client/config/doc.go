// Package config builds the terminal client's configuration.
//
// Sources are applied in order, later ones winning:
//
//  1. LoadDefaults
//  2. a JSON file named by -c/-config or $SREFHUB_CONFIG
//  3. short command-line flags (-a, -t, -d, -l)
//
// Example JSON:
//
//	{
//	  "server_endpoint_addr": "catalog.example:50051",
//	  "request_timeout": "3s",
//	  "data_dir": "/var/lib/srefhub"
//	}
package config
