// The custodian command is a small client for the papervault API. Custodians
// use it to submit their shares and watch quorum; examiners use it to redeem
// papers and check anchors.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/cmd/flags"
)

var serverFlag = &cli.StringFlag{
	Name:  "server",
	Value: "http://127.0.0.1:8080",
	Usage: "papervault API address",
}

var paperFlag = &cli.StringFlag{
	Name:     "paper",
	Required: true,
	Usage:    "paper id",
}

func main() {
	app := &cli.App{
		Name:  "custodian",
		Usage: "Client for the papervault API",
		Flags: append([]cli.Flag{serverFlag}, flags.CommonFlags...),
		Commands: []*cli.Command{
			{
				Name:  "submit-share",
				Usage: "Submit a custodian share for a paper",
				Flags: []cli.Flag{
					paperFlag,
					&cli.IntFlag{Name: "index", Required: true, Usage: "share index"},
					&cli.StringFlag{Name: "value", Required: true, Usage: "base64-encoded share value"},
				},
				Action: submitShare,
			},
			{
				Name:   "quorum",
				Usage:  "Show quorum progress for a paper",
				Flags:  []cli.Flag{paperFlag},
				Action: quorum,
			},
			{
				Name:   "redeem",
				Usage:  "Redeem a paper once quorum is reached",
				Flags:  []cli.Flag{paperFlag},
				Action: redeem,
			},
			{
				Name:  "anchor",
				Usage: "Anchor an entity digest on the integrity ledger",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Required: true, Usage: "entity kind: paper, question or result"},
					&cli.StringFlag{Name: "id", Required: true, Usage: "entity id"},
					&cli.StringFlag{Name: "digest", Required: true, Usage: "hex-encoded SHA-256 digest"},
				},
				Action: anchorDigest,
			},
			{
				Name:  "verify",
				Usage: "Verify a digest against the latest confirmed anchor",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Required: true, Usage: "entity kind: paper, question or result"},
					&cli.StringFlag{Name: "id", Required: true, Usage: "entity id"},
					&cli.StringFlag{Name: "digest", Required: true, Usage: "hex-encoded SHA-256 digest"},
				},
				Action: verifyDigest,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func submitShare(cCtx *cli.Context) error {
	value, err := base64.StdEncoding.DecodeString(cCtx.String("value"))
	if err != nil {
		return fmt.Errorf("invalid share value: %w", err)
	}

	path := fmt.Sprintf("/api/papers/%s/shares", cCtx.String("paper"))
	return post(cCtx, path, map[string]any{
		"index": cCtx.Int("index"),
		"value": value,
	})
}

func quorum(cCtx *cli.Context) error {
	path := fmt.Sprintf("/api/papers/%s/quorum", cCtx.String("paper"))
	return get(cCtx, path)
}

func redeem(cCtx *cli.Context) error {
	path := fmt.Sprintf("/api/papers/%s/redeem", cCtx.String("paper"))
	return post(cCtx, path, nil)
}

func anchorDigest(cCtx *cli.Context) error {
	return post(cCtx, "/api/anchors", map[string]any{
		"kind":   cCtx.String("kind"),
		"id":     cCtx.String("id"),
		"digest": cCtx.String("digest"),
	})
}

func verifyDigest(cCtx *cli.Context) error {
	return post(cCtx, "/api/verify", map[string]any{
		"kind":   cCtx.String("kind"),
		"id":     cCtx.String("id"),
		"digest": cCtx.String("digest"),
	})
}

func post(cCtx *cli.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := http.Post(cCtx.String(serverFlag.Name)+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func get(cCtx *cli.Context, path string) error {
	resp, err := http.Get(cCtx.String(serverFlag.Name) + path)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	fmt.Println(string(bytes.TrimSpace(data)))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
