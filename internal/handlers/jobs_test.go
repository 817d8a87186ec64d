package handlers

import (
	"testing"
	"time"

	"simulation/internal/worker"
)

// waitForStatus attend que le drain d'arrière-plan amène le job à
// l'état voulu
func waitForStatus(t *testing.T, tracker *JobTracker, id string, want JobStatus) JobView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if view, ok := tracker.Get(id); ok && view.Status == want {
			return view
		}
		time.Sleep(5 * time.Millisecond)
	}
	view, ok := tracker.Get(id)
	t.Fatalf("job %s never reached status %s (found %+v, tracked %v)", id, want, view, ok)
	return JobView{}
}

func TestJobTracker_LifecycleToCompletion(t *testing.T) {
	tracker := NewJobTracker()
	responses := make(chan worker.ComputeResponse, 4)
	tracker.Track("job-match", worker.RequestSimulateMatch, responses)

	view, ok := tracker.Get("job-match")
	if !ok {
		t.Fatal("tracked job not found")
	}
	if view.Status != JobRunning {
		t.Fatalf("status = %s, want %s", view.Status, JobRunning)
	}
	if view.Type != worker.RequestSimulateMatch {
		t.Fatalf("type = %s, want %s", view.Type, worker.RequestSimulateMatch)
	}
	if view.SubmittedAt.IsZero() || view.CompletedAt != nil {
		t.Fatalf("fresh job timestamps are wrong: %+v", view)
	}

	responses <- worker.ComputeResponse{
		Type: worker.ResponseProgress, ID: "job-match",
		Progress: &worker.ProgressPayload{Stage: "simulating_map", Percent: 40, Detail: "ascent"},
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		view, _ = tracker.Get("job-match")
		if view.Progress != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("progress never reached the job view")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if view.Progress.Percent != 40 || view.Progress.Stage != "simulating_map" {
		t.Fatalf("progress = %+v, want simulating_map at 40", view.Progress)
	}

	responses <- worker.ComputeResponse{Type: worker.ResponseResult, ID: "job-match", Payload: "series"}
	close(responses)

	view = waitForStatus(t, tracker, "job-match", JobCompleted)
	if view.Result != "series" {
		t.Fatalf("result = %v, want %q", view.Result, "series")
	}
	if view.Error != "" || view.CompletedAt == nil {
		t.Fatalf("completed view is malformed: %+v", view)
	}
}

func TestJobTracker_FailureRecordsError(t *testing.T) {
	tracker := NewJobTracker()
	responses := make(chan worker.ComputeResponse, 1)
	tracker.Track("job-bad", worker.RequestTrainPlayer, responses)

	responses <- worker.ComputeResponse{Type: worker.ResponseError, ID: "job-bad", Error: "training request rejected"}
	close(responses)

	view := waitForStatus(t, tracker, "job-bad", JobFailed)
	if view.Error != "training request rejected" {
		t.Fatalf("error = %q, want the worker error verbatim", view.Error)
	}
	if view.Result != nil {
		t.Fatalf("failed job carries a result: %v", view.Result)
	}
}

func TestJobTracker_ChannelClosedWithoutTerminal(t *testing.T) {
	tracker := NewJobTracker()
	responses := make(chan worker.ComputeResponse)
	tracker.Track("job-torn", worker.RequestResolveScrim, responses)

	close(responses)

	view := waitForStatus(t, tracker, "job-torn", JobFailed)
	if view.Error != "job channel closed without terminal response" {
		t.Fatalf("error = %q, want the torn-channel error", view.Error)
	}
}

func TestJobTracker_UnknownJob(t *testing.T) {
	tracker := NewJobTracker()

	if _, ok := tracker.Get("nope"); ok {
		t.Fatal("Get() found a job that was never tracked")
	}
	if _, _, ok := tracker.Subscribe("nope"); ok {
		t.Fatal("Subscribe() accepted a job that was never tracked")
	}
}

func TestJobTracker_SubscribeStreamsProgressThenCloses(t *testing.T) {
	tracker := NewJobTracker()
	responses := make(chan worker.ComputeResponse, 4)
	tracker.Track("job-live", worker.RequestTrainBatch, responses)

	updates, cancel, ok := tracker.Subscribe("job-live")
	if !ok {
		t.Fatal("Subscribe() did not find the running job")
	}
	defer cancel()

	responses <- worker.ComputeResponse{
		Type: worker.ResponseProgress, ID: "job-live",
		Progress: &worker.ProgressPayload{Stage: "training", Percent: 50},
	}
	responses <- worker.ComputeResponse{
		Type: worker.ResponseProgress, ID: "job-live",
		Progress: &worker.ProgressPayload{Stage: "training", Percent: 100},
	}
	responses <- worker.ComputeResponse{Type: worker.ResponseResult, ID: "job-live", Payload: "batch"}
	close(responses)

	var percents []int
	deadline := time.After(2 * time.Second)
	for {
		select {
		case p, open := <-updates:
			if !open {
				if len(percents) != 2 || percents[0] != 50 || percents[1] != 100 {
					t.Fatalf("streamed percents = %v, want [50 100]", percents)
				}
				return
			}
			percents = append(percents, p.Percent)
		case <-deadline:
			t.Fatalf("subscriber channel never closed, streamed %v so far", percents)
		}
	}
}

func TestJobTracker_SubscribeAfterTerminalIsClosed(t *testing.T) {
	tracker := NewJobTracker()
	responses := make(chan worker.ComputeResponse, 1)
	tracker.Track("job-done", worker.RequestEvaluateDrama, responses)

	responses <- worker.ComputeResponse{Type: worker.ResponseResult, ID: "job-done", Payload: "calm"}
	close(responses)
	waitForStatus(t, tracker, "job-done", JobCompleted)

	updates, cancel, ok := tracker.Subscribe("job-done")
	if !ok {
		t.Fatal("Subscribe() did not find the finished job")
	}
	select {
	case _, open := <-updates:
		if open {
			t.Fatal("finished job streamed a progress update")
		}
	case <-time.After(time.Second):
		t.Fatal("channel for a finished job is not closed")
	}
	cancel()
}

func TestJobTracker_CancelledSubscriberStopsReceiving(t *testing.T) {
	tracker := NewJobTracker()
	responses := make(chan worker.ComputeResponse, 2)
	tracker.Track("job-quit", worker.RequestSimulateMatch, responses)

	updates, cancel, ok := tracker.Subscribe("job-quit")
	if !ok {
		t.Fatal("Subscribe() did not find the running job")
	}
	cancel()

	if _, open := <-updates; open {
		t.Fatal("cancelled subscription still delivers")
	}

	// Le job continue sans l'abonné parti
	responses <- worker.ComputeResponse{Type: worker.ResponseResult, ID: "job-quit", Payload: "fine"}
	close(responses)
	waitForStatus(t, tracker, "job-quit", JobCompleted)
}

func TestJobTracker_CountsPerStatus(t *testing.T) {
	tracker := NewJobTracker()

	running := make(chan worker.ComputeResponse)
	tracker.Track("job-running", worker.RequestSimulateMatch, running)

	done := make(chan worker.ComputeResponse, 1)
	tracker.Track("job-finished", worker.RequestTrainPlayer, done)
	done <- worker.ComputeResponse{Type: worker.ResponseResult, ID: "job-finished"}
	close(done)
	waitForStatus(t, tracker, "job-finished", JobCompleted)

	broken := make(chan worker.ComputeResponse, 1)
	tracker.Track("job-broken", worker.RequestResolveScrim, broken)
	broken <- worker.ComputeResponse{Type: worker.ResponseError, ID: "job-broken", Error: "boom"}
	close(broken)
	waitForStatus(t, tracker, "job-broken", JobFailed)

	r, c, f := tracker.Counts()
	if r != 1 || c != 1 || f != 1 {
		t.Fatalf("Counts() = %d/%d/%d, want 1/1/1", r, c, f)
	}
	close(running)
}
