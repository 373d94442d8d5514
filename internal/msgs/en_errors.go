// Copyright © 2025 The proofd authors
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package msgs

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const proofdPrefix = "ZP10"

var registered sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registered.Do(func() {
		i18n.RegisterPrefix(proofdPrefix, "Zcash Proof Service")
	})
	if !strings.HasPrefix(key, proofdPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", proofdPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Configuration faults - recoverable by operator action
	MsgConfigFileMissing    = ffe("ZP100000", "Config file not found at path: %s")
	MsgConfigFileReadError  = ffe("ZP100001", "Failed to read config file %s: %s")
	MsgConfigFileParseError = ffe("ZP100002", "Failed to parse config file: %s")
	MsgProverParamsNotFound = ffe("ZP100003", "Groth16 proving parameters not found. Checked: %s.%s Run 'proofd fetch-params', or place sapling-spend.params and sapling-output.params in a 'params' directory at the project root", http.StatusInternalServerError)
	MsgParamFileUnreadable  = ffe("ZP100004", "Parameter file not readable: %s. %s", http.StatusInternalServerError)

	// Client faults
	MsgInvalidRequestBody    = ffe("ZP100010", "Failed to parse request body: %s", http.StatusBadRequest)
	MsgUnsupportedProofKind  = ffe("ZP100011", "Invalid proof type: %s", http.StatusBadRequest)
	MsgMissingRequiredParam  = ffe("ZP100012", "Missing required parameter '%s'", http.StatusBadRequest)
	MsgInvalidAmount         = ffe("ZP100013", "Parameter 'amount' must be an unsigned 64-bit decimal (string or number): %s", http.StatusBadRequest)
	MsgMissingRequiredField  = ffe("ZP100014", "Field '%s' is required", http.StatusBadRequest)
	MsgMethodNotAllowed      = ffe("ZP100015", "Method %s not allowed on %s", http.StatusMethodNotAllowed)

	// Structural limitations - architectural boundaries, not bugs
	MsgSpendWitnessUnavailable = ffe("ZP100020", "Spend proof generation requires a note commitment tree witness and anchor, which this service does not hold. Use lightwalletd's transaction building API (gRPC SendTransaction): it derives the witness and anchor from compact blocks and generates the Groth16 proofs itself. Current params: spendingKey (%d chars), amount=%d", http.StatusInternalServerError)
	MsgOutputDecodeUnavailable = ffe("ZP100021", "Output proof generation requires payment address decoding and shielded note construction, which this service does not perform. Use lightwalletd's transaction building API (gRPC SendTransaction): it handles address decoding, note construction and proof generation. Current params: toAddress=%s, amount=%d", http.StatusInternalServerError)
	MsgBuildNotImplemented     = ffe("ZP100022", "Transaction building requires chain state this service does not hold: compact blocks from lightwalletd, a note commitment tree, witnesses for the spendable notes, and the transaction builder. Current request: spendingKey (%d chars), from=%s..., to=%s..., amount=%s zatoshi, memo (%d bytes)", http.StatusNotImplemented)

	// Server faults
	MsgProofGenerationFailed = ffe("ZP100030", "%s proof generation failed: %s", http.StatusInternalServerError)
	MsgWitnessNotSupplied    = ffe("ZP100031", "No witness supplied for %s circuit", http.StatusInternalServerError)

	// HTTP server
	MsgHTTPServerMissingPort = ffe("ZP100040", "HTTP server port must be specified for '%s'")
	MsgHTTPServerStartFailed = ffe("ZP100041", "Failed to start server on '%s'")

	// Parameter fetch
	MsgParamDownloadFailed    = ffe("ZP100050", "Failed to download %s from %s: %s")
	MsgParamDownloadBadStatus = ffe("ZP100051", "Unexpected status %d downloading %s")
	MsgParamChecksumMismatch  = ffe("ZP100052", "Downloaded %s failed SHA-256 verification: expected %s, got %s")
	MsgParamDirCreateFailed   = ffe("ZP100053", "Failed to create parameter directory %s: %s")
	MsgParamFileWriteFailed   = ffe("ZP100054", "Failed to write %s: %s")
)
