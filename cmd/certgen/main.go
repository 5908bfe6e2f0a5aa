// Copyright 2026 The HostGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// certgen mints a development root of trust and a secure-tier leaf for the
// hosting service, writing PEM files under the output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hostgrid/hostgrid/internal/trust"
)

func main() {
	outDir := flag.String("out", "certs", "output directory for PEM files")
	name := flag.String("name", "hostgrid-dev", "root certificate common name")
	validity := flag.Duration("validity", 3*365*24*time.Hour, "root validity window")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	authority, err := trust.NewAuthority(*name, *validity)
	if err != nil {
		log.Fatalf("create authority: %v", err)
	}

	leaf, key, err := authority.Issue(trust.LeafSpec{
		CommonName:    "hosting",
		Roles:         []string{trust.RoleCore},
		Domains:       []string{"hosting"},
		ExchangeLevel: trust.L4Secure,
	})
	if err != nil {
		log.Fatalf("issue leaf: %v", err)
	}

	keyPEM, err := trust.EncodeKeyPEM(key)
	if err != nil {
		log.Fatalf("encode key: %v", err)
	}

	files := map[string]string{
		"grid.ca.pem":      authority.CertificatePEM(),
		"hosting.cert.pem": trust.EncodeCertificatePEM(leaf) + authority.CertificatePEM(),
		"hosting.key.pem":  keyPEM,
		"tenant_id.txt":    authority.TenantID() + "\n",
	}
	for name, content := range files {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		fmt.Printf("wrote %s\n", path)
	}

	fmt.Printf("tenant id: %s\n", authority.TenantID())
}
