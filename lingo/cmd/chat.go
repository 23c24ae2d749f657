package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"lingo/lingo/signaling"
	"lingo/lingo/utils/color"
	httputils "lingo/lingo/utils/http"
	"lingo/lingo/utils/types"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

type chatMessage struct {
	ConversationID string    `json:"conversationId"`
	SenderID       int       `json:"senderId"`
	ReceiverID     int       `json:"receiverId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

var chatCmd = &cobra.Command{
	Use:     "chat <friend-user-id>",
	Short:   "Chat with a friend in real time",
	Example: `  lingo chat 42`,
	Args:    cobra.ExactArgs(1),
	RunE:    runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := requireToken(); err != nil {
		return err
	}
	friendID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("friend id must be a number: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var me struct {
		User struct {
			ID       int    `json:"_id"`
			FullName string `json:"fullName"`
		} `json:"user"`
	}
	if err := httputils.GetJSON(ctx, apiURL("/api/auth/me"), token, &me); err != nil {
		return fmt.Errorf("who am i: %w", err)
	}

	var conv struct {
		ID string `json:"_id"`
	}
	err = httputils.PostJSON(ctx, apiURL("/api/chat/conversations"), token, types.CreateConversationRequest{
		UserID1: me.User.ID,
		UserID2: friendID,
	}, &conv)
	if err != nil {
		return fmt.Errorf("open conversation: %w", err)
	}

	var history []chatMessage
	if err := httputils.GetJSON(ctx, apiURL("/api/chat/"+conv.ID), token, &history); err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	for _, m := range history {
		printMessage(me.User.ID, m)
	}

	conn, _, err := websocket.Dial(ctx, socketURL(), nil)
	if err != nil {
		return fmt.Errorf("connect socket: %w", err)
	}
	defer conn.CloseNow()

	if err := sendFrame(ctx, conn, signaling.EventChatJoin, map[string]string{"conversationId": conv.ID}); err != nil {
		return err
	}
	fmt.Println(color.ColorInfo(fmt.Sprintf("joined %s, type a message and press enter (Ctrl+C to quit)", conv.ID)))

	go readChat(ctx, conn, me.User.ID, stop)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		case line, ok := <-lines:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			var saved chatMessage
			err := httputils.PostJSON(ctx, apiURL("/api/chat/message"), token, types.SendMessageRequest{
				ConversationID: conv.ID,
				Text:           text,
				ReceiverID:     friendID,
			}, &saved)
			if err != nil {
				fmt.Println(color.ColorError("send failed: " + err.Error()))
				continue
			}
			err = sendFrame(ctx, conn, signaling.EventChatSend, map[string]any{
				"conversationId": conv.ID,
				"message":        saved,
			})
			if err != nil {
				return err
			}
		}
	}
}

func readChat(ctx context.Context, conn *websocket.Conn, myID int, stop context.CancelFunc) {
	defer stop()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				fmt.Println(color.ColorWarning("disconnected: " + err.Error()))
			}
			return
		}
		var f signaling.Frame
		if json.Unmarshal(data, &f) != nil {
			continue
		}
		switch f.Event {
		case signaling.EventChatReceive:
			var p struct {
				Message chatMessage `json:"message"`
			}
			if json.Unmarshal(f.Data, &p) == nil {
				printMessage(myID, p.Message)
			}
		case signaling.EventError:
			fmt.Println(color.ColorError("server: " + string(f.Data)))
		}
	}
}

func printMessage(myID int, m chatMessage) {
	stamp := m.CreatedAt.Local().Format("15:04")
	if m.SenderID == myID {
		fmt.Printf("%s %s\n", stamp, color.ColorSelf("you: "+m.Text))
		return
	}
	fmt.Printf("%s %s\n", stamp, color.ColorPeer("them: "+m.Text))
}

func sendFrame(ctx context.Context, conn *websocket.Conn, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(signaling.Frame{Event: event, Data: raw})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, frame)
}
