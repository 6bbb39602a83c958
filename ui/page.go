package ui

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Digits NN</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: #f4f5f7;
            color: #222;
            padding: 24px;
        }

        h1 {
            margin-bottom: 8px;
        }

        #summary {
            margin-bottom: 24px;
            color: #555;
        }

        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(480px, 1fr));
            gap: 24px;
        }

        .card {
            background: #fff;
            border-radius: 8px;
            box-shadow: 0 1px 4px rgba(0, 0, 0, 0.1);
            padding: 16px;
        }

        .card h2 {
            font-size: 16px;
            margin-bottom: 12px;
        }

        canvas {
            width: 100%;
            height: 300px;
        }
    </style>
</head>
<body>
    <h1>Handwritten digits</h1>
    <div id="summary">Loading...</div>
    <div class="grid">
        <div class="card"><h2>Training Loss</h2><canvas id="loss" width="600" height="300"></canvas></div>
        <div class="card"><h2>True vs Predicted Numbers</h2><canvas id="scatter" width="600" height="300"></canvas></div>
        <div class="card"><h2>Error per Test Sample</h2><canvas id="errors" width="600" height="300"></canvas></div>
        <div class="card"><h2>Histogram of Testing Error</h2><canvas id="histogram" width="600" height="300"></canvas></div>
    </div>

    <script>
        const pad = 40;

        function axes(ctx, w, h, xLabel, yLabel) {
            ctx.clearRect(0, 0, w, h);
            ctx.strokeStyle = '#888';
            ctx.beginPath();
            ctx.moveTo(pad, pad / 2);
            ctx.lineTo(pad, h - pad);
            ctx.lineTo(w - pad / 2, h - pad);
            ctx.stroke();
            ctx.fillStyle = '#555';
            ctx.font = '12px sans-serif';
            ctx.fillText(xLabel, w / 2, h - 8);
            ctx.save();
            ctx.translate(12, h / 2);
            ctx.rotate(-Math.PI / 2);
            ctx.fillText(yLabel, 0, 0);
            ctx.restore();
        }

        function scale(min, max, from, to) {
            const span = max - min || 1;
            return v => from + (v - min) / span * (to - from);
        }

        function drawLine(id, ys, xLabel, yLabel) {
            const c = document.getElementById(id), ctx = c.getContext('2d');
            axes(ctx, c.width, c.height, xLabel, yLabel);
            if (ys.length === 0) return;
            const sx = scale(0, ys.length - 1, pad, c.width - pad / 2);
            const sy = scale(Math.min(...ys), Math.max(...ys), c.height - pad, pad / 2);
            ctx.strokeStyle = '#1f77b4';
            ctx.beginPath();
            ys.forEach((y, i) => i === 0 ? ctx.moveTo(sx(i), sy(y)) : ctx.lineTo(sx(i), sy(y)));
            ctx.stroke();
        }

        function drawScatter(id, xs, ys, xRange, yRange, xLabel, yLabel) {
            const c = document.getElementById(id), ctx = c.getContext('2d');
            axes(ctx, c.width, c.height, xLabel, yLabel);
            const sx = scale(xRange[0], xRange[1], pad, c.width - pad / 2);
            const sy = scale(yRange[0], yRange[1], c.height - pad, pad / 2);
            ctx.fillStyle = 'rgba(31, 119, 180, 0.4)';
            xs.forEach((x, i) => {
                ctx.beginPath();
                ctx.arc(sx(x), sy(ys[i]), 3, 0, 2 * Math.PI);
                ctx.fill();
            });
        }

        function drawBars(id, bins, xLabel, yLabel) {
            const c = document.getElementById(id), ctx = c.getContext('2d');
            axes(ctx, c.width, c.height, xLabel, yLabel);
            const max = Math.max(1, ...bins.map(b => b.count));
            const bw = (c.width - pad * 1.5) / bins.length;
            const sy = scale(0, max, c.height - pad, pad / 2);
            bins.forEach((b, i) => {
                const x = pad + i * bw;
                ctx.fillStyle = b.error === 0 ? '#2ca02c' : '#1f77b4';
                ctx.fillRect(x + 1, sy(b.count), bw - 2, c.height - pad - sy(b.count));
                ctx.fillStyle = '#555';
                ctx.fillText(b.error, x + bw / 2 - 4, c.height - pad + 14);
            });
        }

        fetch('/api/report')
            .then(r => r.json())
            .then(report => {
                const points = report.points || [];
                document.getElementById('summary').textContent =
                    'Training samples: ' + (report.losses || []).length +
                    ', test samples: ' + points.length +
                    ', accuracy: ' + (report.accuracy * 100).toFixed(2) + '%' +
                    ', mean loss: ' + report.meanLoss.toFixed(4);

                drawLine('loss', report.losses || [], 'Epoch', 'Loss');
                drawScatter('scatter', points.map(p => p.true), points.map(p => p.predicted),
                    [0, 9], [0, 9], 'Labels', 'Prediction');
                drawScatter('errors', points.map(p => p.index), report.errors || [],
                    [0, Math.max(1, points.length - 1)], [-9, 9], 'Sample', 'Error in Prediction');
                drawBars('histogram', report.histogram || [], 'Error in Prediction', 'Count');
            })
            .catch(err => {
                document.getElementById('summary').textContent = 'Failed to load report: ' + err;
            });
    </script>
</body>
</html>
`
