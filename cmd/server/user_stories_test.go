package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// Test_UserStories tests the user stories of the application.
// These are end-to-end tests and won't check the nitty-gritty details or edge cases.
func Test_UserStories(t *testing.T) {
	t.Run("as a home owner, I want to", testEnv(func(t *testing.T) {
		useTestDatabase(t)
		envForTest(t, "DB_SETUP", "true")
		envForTest(t, "GEOCODE_BASE_URL", fakeGeocoder(t).URL)

		// runAppForTest waits for the app to be up and stops it after the test finishes.
		logs := runAppForTest(t)

		c := newClient()

		creds := map[string]string{
			"email":    "owner@example.com",
			"password": "reallyStrongPassword1",
		}

		t.Run("register an account", func(t *testing.T) {
			var out struct {
				Token string `json:"token"`
			}
			c.mustJSON(t, http.MethodPost, "/users", creds, http.StatusCreated, &out)

			if out.Token == "" {
				t.Fatalf("expected a token")
			}
		})

		t.Run("not register the same account twice", func(t *testing.T) {
			c.mustJSON(t, http.MethodPost, "/users", creds, http.StatusBadRequest, nil)
		})

		t.Run("log in to my account", func(t *testing.T) {
			var out struct {
				Token string `json:"token"`
				ID    string `json:"id"`
			}
			c.mustJSON(t, http.MethodPost, "/users/login", creds, http.StatusOK, &out)

			if out.Token == "" || out.ID == "" {
				t.Fatalf("expected a token and id, got %+v", out)
			}
			c.token = out.Token
		})

		t.Run("view my status", func(t *testing.T) {
			var out struct {
				Email string `json:"email"`
			}
			c.mustJSON(t, http.MethodGet, "/users/status", nil, http.StatusOK, &out)

			if out.Email != "owner@example.com" {
				t.Errorf("got email %q, want %q", out.Email, "owner@example.com")
			}
		})

		var propertyID string

		t.Run("list my home with a photo", func(t *testing.T) {
			fields := url.Values{
				"address":                 {"1 Main St"},
				"price":                   {"250000"},
				"description":             {"A cozy home"},
				"specification.built":     {"1990"},
				"specification.lot":       {"0.25"},
				"specification.bedrooms":  {"3"},
				"specification.bathrooms": {"2"},
				"specification.size":      {"1800"},
			}

			var out struct {
				ID string `json:"id"`
			}
			c.mustMultipart(t, "/properties", fields, testPNG(t), http.StatusCreated, &out)

			if out.ID == "" {
				t.Fatalf("expected a property id")
			}
			propertyID = out.ID
		})

		t.Run("see my home in the listings", func(t *testing.T) {
			var out []struct {
				ID       string `json:"_id"`
				Address  string `json:"address"`
				Location struct {
					Coordinates [2]float64 `json:"coordinates"`
				} `json:"location"`
			}
			c.mustJSON(t, http.MethodGet, "/properties?price-max=300000", nil, http.StatusOK, &out)

			if len(out) != 1 || out[0].ID != propertyID {
				t.Fatalf("expected exactly property %s, got %+v", propertyID, out)
			}
			if out[0].Address != "1 Main St, Springfield, USA" {
				t.Errorf("got address %q, want the geocoded address", out[0].Address)
			}
			if out[0].Location.Coordinates != [2]float64{-89.65, 39.78} {
				t.Errorf("got coordinates %v", out[0].Location.Coordinates)
			}

			c.mustJSON(t, http.MethodGet, "/properties?price-min=300000", nil, http.StatusOK, &out)
			if len(out) != 0 {
				t.Errorf("expected no properties above the price, got %d", len(out))
			}

			c.mustJSON(t, http.MethodGet, "/users/listings", nil, http.StatusOK, &out)
			if len(out) != 1 {
				t.Errorf("expected one listing of my own, got %d", len(out))
			}
		})

		t.Run("see the photo of my home", func(t *testing.T) {
			c.mustStatus(t, baseURL+"/static/property/image/"+propertyID+"-500.webp", http.StatusOK)
			c.mustStatus(t, baseURL+"/static/property/image/"+propertyID+"-80.jpg", http.StatusOK)
		})

		t.Run("receive an offer by email", func(t *testing.T) {
			anon := newClient()
			anon.mustJSON(t, http.MethodPost, "/offers/email", map[string]any{
				"name":      "Bob Buyer",
				"phone":     "555-0100",
				"homeOffer": propertyID,
				"cashOffer": 240000,
				"comments":  "Love the porch",
			}, http.StatusNoContent, nil)

			assertLog(t, logs.String(),
				"send email",
				"recipient=owner@example.com",
				"Tuffy Estates - You got an offer for your home",
			)
		})

		t.Run("change the price of my home", func(t *testing.T) {
			c.mustJSON(t, http.MethodPatch, "/properties/"+propertyID, map[string]any{
				"price": 235000,
			}, http.StatusNoContent, nil)

			var out struct {
				Price       int    `json:"price"`
				Description string `json:"description"`
			}
			c.mustJSON(t, http.MethodGet, "/properties/"+propertyID, nil, http.StatusOK, &out)

			if out.Price != 235000 || out.Description != "A cozy home" {
				t.Errorf("got %+v, want updated price and unchanged description", out)
			}
		})

		t.Run("remove my home", func(t *testing.T) {
			c.mustJSON(t, http.MethodDelete, "/properties/"+propertyID, nil, http.StatusNoContent, nil)
			c.mustJSON(t, http.MethodGet, "/properties/"+propertyID, nil, http.StatusNotFound, nil)
			c.mustStatus(t, baseURL+"/static/property/image/"+propertyID+"-500.webp", http.StatusNotFound)
		})

		t.Run("log out", func(t *testing.T) {
			c.mustJSON(t, http.MethodHead, "/users/logout", nil, http.StatusOK, nil)
		})
	}))
}

// runAppForTest runs the app while the test is running.
// This function returns after the app is confirmed to be up and stops
// the app when the test is cleaned up.
func runAppForTest(t *testing.T) *safeBuffer {
	t.Helper()

	// This helper function does two things:
	// 1. Run the app in a goroutine.
	// 2. Wait for the app to be up and running.

	// Both these tasks are done concurrently and share the same context.
	// When this context is cancelled, both tasks will stop.

	buf := newBuffer()

	// we will stop the server after a timeout or when the test is cleaned up.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	done := make(chan struct{})
	t.Cleanup(func() {
		// stop both tasks if it's still in progress.
		cancel()
		<-done

		if t.Failed() {
			t.Logf("app output:\n%s", buf.String())
		}
	})

	// Task 1: Run the app.
	go func() {
		defer close(done)

		code := run(ctx, buf)
		if code != 0 {
			t.Errorf("run exited with code %d", code)
		}

		// stop the other task
		cancel()
	}()

	// Task 2: Wait for the app to be available.
	waitCtx, waitCancel := context.WithTimeout(ctx, tryServingDuration)
	defer waitCancel()

	err := waitForStatusOK(waitCtx, publicURL)
	if err != nil {
		t.Fatalf("error waiting for status ok: %v", err)
	}

	return buf
}

// fakeGeocoder answers every geocoding request with the same place.
func fakeGeocoder(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"1 Main St, Springfield, USA","geometry":{"location":{"lat":39.78,"lng":-89.65}}}]}`)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		for y := 0; y < 480; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	return buf.Bytes()
}

type client struct {
	http  *http.Client
	token string
}

func newClient() *client {
	return &client{
		http: &http.Client{
			// generating image variants takes a while.
			Timeout: 30 * time.Second,
		},
	}
}

func (c *client) mustJSON(t *testing.T, method, path string, in any, wantStatus int, out any) {
	t.Helper()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiURL+path, body)
	if err != nil {
		t.Fatalf("unexpected error creating request: %v", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mustDo(t, req, wantStatus, out)
}

func (c *client) mustMultipart(t *testing.T, path string, fields url.Values, image []byte, wantStatus int, out any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			err := mw.WriteField(k, v)
			if err != nil {
				t.Fatalf("failed to write field %s: %v", k, err)
			}
		}
	}

	fw, err := mw.CreateFormFile("image", "house.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	_, err = fw.Write(image)
	if err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}

	err = mw.Close()
	if err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL+path, &buf)
	if err != nil {
		t.Fatalf("unexpected error creating request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.mustDo(t, req, wantStatus, out)
}

func (c *client) mustStatus(t *testing.T, url string, wantStatus int) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("unexpected error creating request: %v", err)
	}

	c.mustDo(t, req, wantStatus, nil)
}

func (c *client) mustDo(t *testing.T, req *http.Request, wantStatus int, out any) {
	t.Helper()

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("unexpected error during %s %s: %v", req.Method, req.URL, err)
	}

	defer func() {
		err := res.Body.Close()
		if err != nil {
			t.Fatalf("unexpected error closing response body: %v", err)
		}
	}()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("unexpected error reading response body: %v", err)
	}

	if res.StatusCode != wantStatus {
		t.Fatalf("%s %s: got status %d, want %d. body:\n%s", req.Method, req.URL, res.StatusCode, wantStatus, data)
	}

	if out != nil {
		err = json.Unmarshal(data, out)
		if err != nil {
			t.Fatalf("failed to unmarshal response %s: %v", data, err)
		}
	}
}
