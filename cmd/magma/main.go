// Command magma is a small demonstration CLI for the replication
// protocol core: it encodes/decodes events from hex on the command line
// and runs a toy sync against an in-process store, so the library can be
// exercised without wiring a real transport. The core protocol defines
// no CLI of its own (spec §1); this binary is ambient tooling layered on
// top of it, the same relationship cmd/opera has to inter/opera in the
// teacher repo.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/rony4d/magma/config"
	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/event"
	"github.com/rony4d/magma/replication"
	"github.com/rony4d/magma/semigroup"
	"github.com/rony4d/magma/server"
	"github.com/rony4d/magma/transport"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
)

var log = logrus.WithField("cmd", "magma")

var app = cli.NewApp()

func init() {
	app.Name = "magma"
	app.Usage = "inspect and exercise the magma replication protocol core"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a JSON config file selecting the digest family",
		},
	}
	app.Commands = []cli.Command{
		encodeCommand,
		decodeCommand,
		demoCommand,
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("magma: command failed")
		os.Exit(1)
	}
}

func familyFromContext(c *cli.Context) (digest.Family, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	return cfg.Family()
}

var encodeCommand = cli.Command{
	Name:      "encode",
	Usage:     "encode a root event from a hex delta digest and size, printing the hex-encoded event",
	ArgsUsage: "<delta-digest-hex> <delta-size>",
	Action: func(c *cli.Context) error {
		fam, err := familyFromContext(c)
		if err != nil {
			return err
		}
		if c.NArg() != 2 {
			return fmt.Errorf("encode: expected 2 arguments, got %d", c.NArg())
		}
		deltaDigest, err := hex.DecodeString(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("encode: invalid delta digest hex: %w", err)
		}
		var size uint64
		if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &size); err != nil {
			return fmt.Errorf("encode: invalid delta size: %w", err)
		}

		root := event.NewRootEvent(digest.Digest(deltaDigest), size)
		encoded := event.EncodeToBytes(root, fam)
		fmt.Println(hex.EncodeToString(encoded))
		return nil
	},
}

var decodeCommand = cli.Command{
	Name:      "decode",
	Usage:     "decode a hex-encoded event and print its fields",
	ArgsUsage: "<event-hex>",
	Action: func(c *cli.Context) error {
		fam, err := familyFromContext(c)
		if err != nil {
			return err
		}
		if c.NArg() != 1 {
			return fmt.Errorf("decode: expected 1 argument, got %d", c.NArg())
		}
		raw, err := hex.DecodeString(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("decode: invalid hex: %w", err)
		}

		e, err := event.DecodeSafe(raw, fam)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		switch v := e.(type) {
		case *event.Root:
			fmt.Printf("Root delta_digest=%s delta_size=%d\n", v.Digest, v.Size)
		case *event.Child:
			fmt.Printf("Child seq=%d predecessor=%s delta_digest=%s delta_size=%d skip=%s skip_digest=%s skip_size=%d\n",
				v.SequenceNumber, v.PredecessorEventLink, v.Digest, v.Size,
				v.SkipEventLink, v.SkipDigest, v.SkipSize)
		}
		return nil
	},
}

var demoCommand = cli.Command{
	Name:  "demo",
	Usage: "build a two-event chain in an in-memory store and fetch/validate it over a loopback transport",
	Action: func(c *cli.Context) error {
		fam, err := familyFromContext(c)
		if err != nil {
			return err
		}

		store := server.NewStore(fam, log)

		encodeCounter := func(v uint64) []byte {
			c := semigroup.Counter(v)
			buf := make([]byte, c.EncodingLength())
			n, _ := c.Encode(buf)
			return buf[:n]
		}

		rootVal := encodeCounter(1)
		root := event.NewRootEvent(fam.Sum(rootVal), uint64(len(rootVal)))
		rootHash := store.Put(root, rootVal)

		childVal := encodeCounter(2)
		child := event.NewChildEventNoSkip(2, rootHash, fam.Sum(childVal), uint64(len(childVal)))
		childHash := store.Put(child, childVal)

		lb := transport.NewLoopback(func(req replication.RequestDTO) (replication.ResponseDTO, error) {
			typed, err := req.ToRequest(fam)
			if err != nil {
				return replication.ResponseDTO{}, err
			}
			resp, err := store.Query(typed)
			if err != nil {
				return replication.ResponseDTO{}, err
			}
			return *resp, nil
		})

		reqDTO := replication.FromRequest(replication.Request{
			New:           childHash,
			Ordering:      replication.Descending,
			PathLength:    replication.ShortestPath,
			IncludeValues: true,
		})
		respDTO, err := lb.Call(*reqDTO)
		if err != nil {
			return err
		}
		unvalidated, err := replication.ToUnvalidatedResponse[semigroup.Counter](&respDTO, fam, semigroup.CounterSemigroup)
		if err != nil {
			return err
		}
		req, err := reqDTO.ToRequest(fam)
		if err != nil {
			return err
		}
		valid, err := replication.Validate[semigroup.Counter](unvalidated, req, fam, log)
		if err != nil {
			return err
		}
		acc := valid.CombineValues(semigroup.CounterSemigroup)
		if acc == nil {
			return fmt.Errorf("demo: response carried no values")
		}
		fmt.Printf("fetched and validated %d events, combined value = %v\n", len(valid.Events), *acc)
		return nil
	},
}
