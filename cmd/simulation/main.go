package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
)

// Simplified DTOs for the script
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type loginData struct {
	AccessToken string `json:"access_token"`
}

type sessionData struct {
	ID string `json:"id"`
}

type chatData struct {
	Emotion   string   `json:"emotion"`
	Reply     string   `json:"reply"`
	Crisis    bool     `json:"crisis"`
	SessionID string   `json:"session_id"`
	Context   []string `json:"context"`
}

var client = &http.Client{Timeout: 90 * time.Second}

func main() {
	baseURL := flag.String("url", "http://localhost:5000/api", "API base URL")
	username := flag.String("user", "simulation", "username to register or reuse")
	password := flag.String("password", "simulation123", "password")
	flag.Parse()

	color.Cyan("=== MindCare Chat Simulation ===")

	creds := map[string]string{"username": *username, "password": *password}
	if _, err := call[any](*baseURL+"/auth/register", "", creds); err != nil {
		color.Yellow("Register skipped: %v", err)
	}

	login, err := call[loginData](*baseURL+"/auth/login", "", creds)
	if err != nil {
		log.Fatalf("Failed to login: %v", err)
	}
	token := login.AccessToken

	session, err := call[sessionData](*baseURL+"/chat/sessions", token, map[string]string{"title": "Simulation"})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	fmt.Printf("Session Created: %s\n", session.ID)

	testCases := []string{
		"Hi, I'm having a rough week",
		"I'm feeling anxious about my exams and can't sleep",
		"Work has been making me so angry lately",
		"Thanks, that actually helps a bit",
		"Sometimes I feel like I want to end my life",
	}

	for _, text := range testCases {
		color.White("\nUSER: %s", text)

		start := time.Now()
		reply, err := call[chatData](*baseURL+"/chat", token, map[string]string{
			"message":    text,
			"session_id": session.ID,
		})
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		label := color.GreenString("[%s]", reply.Emotion)
		if reply.Crisis {
			label = color.RedString("[CRISIS]")
		}
		fmt.Printf("AI %s (%v): %s\n", label, elapsed, reply.Reply)
		for _, c := range reply.Context {
			color.HiBlack("  context: %s", c)
		}
	}
}

func call[T any](url, token string, body interface{}) (T, error) {
	var zero T
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return zero, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return zero, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(raw))
	}

	var res envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return zero, err
	}
	return res.Data, nil
}
