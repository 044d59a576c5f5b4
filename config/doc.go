// Package config loads connection profiles for the restclient CLI.
//
// A configuration file is YAML (or JSON, selected by the .json extension)
// holding named profiles:
//
//	default: api
//	profiles:
//	  api:
//	    baseUrl: https://api.example.com
//	    headers:
//	      Accept: application/json
//	    query:
//	      version: "2"
//	    timeout: 10s
//	    verifySsl: true
//	    auth:
//	      type: bearer
//	      token: ${API_TOKEN}
//
// Basic Usage:
//
//	cfg, err := config.Load("restclient.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	profile, err := cfg.Profile("api")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := http.NewClient()
//	if err := profile.Apply(client); err != nil {
//	    log.Fatal(err)
//	}
//
// Environment Variables:
//
// ${NAME} references in URLs, headers, query values and credentials are
// replaced with the value of the environment variable NAME when the file is
// loaded. Unset variables expand to the empty string.
package config
