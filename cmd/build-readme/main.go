package main

import (
	"flag"
	"log"

	"github.com/keshon/flowbot/internal/commands"
	"github.com/keshon/flowbot/internal/docs"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
)

// offline satisfies the dispatcher; nothing is sent while building docs.
type offline struct{ chat.Client }

func (offline) Self() *chat.User { return &chat.User{ID: "flowbot", Username: "flowbot", Bot: true} }

func main() {
	out := flag.String("out", "COMMANDS.md", "output file")
	prefix := flag.String("prefix", "!", "prefix shown in examples")
	flag.Parse()

	d, err := cmd.NewDispatcher(cmd.Options{Client: offline{}})
	if err != nil {
		log.Fatal(err)
	}
	d.Register(commands.All()...)

	if err := docs.WriteFile(*out, d.Registry(), *prefix, commands.CategoryWeights); err != nil {
		log.Fatal(err)
	}
	log.Printf("[INFO] %s updated with %d commands", *out, len(d.Registry().All()))
}
