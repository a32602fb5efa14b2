package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/crypto"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new account identity",
	Long: `Generate an ed25519 keypair and print its derived account address.
The private key is printed once and never stored; keep it safe.`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("generate keypair: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "address:     %s\n", addresscodec.EncodeAccountID(kp.AccountID))
	fmt.Fprintf(out, "account_id:  %s\n", hex.EncodeToString(kp.AccountID[:]))
	fmt.Fprintf(out, "public_key:  %s\n", hex.EncodeToString(kp.PublicKey))
	fmt.Fprintf(out, "private_key: %s\n", hex.EncodeToString(kp.PrivateKey))
	return nil
}
