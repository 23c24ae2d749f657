package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"lingo/lingo/signaling"
	"lingo/lingo/utils/color"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

var (
	relayRoom  string
	relayEmail string
	relayOffer bool
)

var callRelayCmd = &cobra.Command{
	Use:   "call-relay",
	Short: "Join a call room and print the signaling traffic",
	Long: `call-relay joins a call room like a browser would and prints every frame
it receives. With --offer it sends a placeholder offer to each peer that
joins and answers any offer it receives, which is enough to check that two
clients can reach each other through the relay.`,
	Example: `  lingo call-relay --room 1-2-room --offer`,
	RunE:    runCallRelay,
}

func init() {
	callRelayCmd.Flags().StringVar(&relayRoom, "room", "", "call room id")
	callRelayCmd.Flags().StringVar(&relayEmail, "email", "cli@lingo.local", "email announced to the room")
	callRelayCmd.Flags().BoolVar(&relayOffer, "offer", false, "exchange placeholder offers and answers")
	_ = callRelayCmd.MarkFlagRequired("room")
}

func runCallRelay(cmd *cobra.Command, args []string) error {
	if err := requireToken(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conn, _, err := websocket.Dial(ctx, socketURL(), nil)
	if err != nil {
		return fmt.Errorf("connect socket: %w", err)
	}
	defer conn.CloseNow()

	if err := sendFrame(ctx, conn, signaling.EventRoomJoin, map[string]string{"email": relayEmail, "room": relayRoom}); err != nil {
		return err
	}
	fmt.Println(color.ColorInfo("waiting in room " + relayRoom))

	placeholder := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var f signaling.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		fmt.Printf("%s %s\n", color.ColorPrompt(f.Event), string(f.Data))

		if !relayOffer {
			continue
		}
		var p struct {
			ID   string `json:"id"`
			From string `json:"from"`
		}
		_ = json.Unmarshal(f.Data, &p)
		switch f.Event {
		case signaling.EventUserJoined:
			err = sendFrame(ctx, conn, signaling.EventUserCall, map[string]any{"to": p.ID, "offer": placeholder})
		case signaling.EventIncomingRTC:
			err = sendFrame(ctx, conn, signaling.EventCallAccepted, map[string]any{"to": p.From, "ans": answer})
		case signaling.EventRoomFull:
			return fmt.Errorf("room %s is full", relayRoom)
		}
		if err != nil {
			return err
		}
	}
}
